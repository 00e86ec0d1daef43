package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidlink/internal/metrics"
)

// BinaryChecker reports whether the extractor binary can be run
type BinaryChecker interface {
	Available() error
}

// Pinger reports whether an optional backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints
type HealthHandler struct {
	extractor BinaryChecker
	cache     Pinger // nil when the response cache is disabled
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewHealthHandler creates a health handler. cache may be nil.
func NewHealthHandler(extractor BinaryChecker, cache Pinger, m *metrics.Metrics, logger *zap.Logger) *HealthHandler {
	if m == nil {
		m = metrics.GetMetrics()
	}
	return &HealthHandler{
		extractor: extractor,
		cache:     cache,
		metrics:   m,
		logger:    logger,
	}
}

// BasicHealth returns simple healthy status (for load balancers)
func (h *HealthHandler) BasicHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// Liveness returns whether service is alive (for k8s liveness probe)
func (h *HealthHandler) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"alive": true,
	})
}

// Readiness reports whether yt-dlp can be resolved. An unreachable cache
// only degrades the response, since requests still work without it.
func (h *HealthHandler) Readiness(c *fiber.Ctx) error {
	checks := fiber.Map{}

	if err := h.extractor.Available(); err != nil {
		h.logger.Warn("yt-dlp not available", zap.Error(err))
		checks["ytdlp"] = "unavailable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"ready":   false,
			"message": "yt-dlp not available",
			"checks":  checks,
		})
	}
	checks["ytdlp"] = "ok"

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn("Cache health check failed", zap.Error(err))
			checks["cache"] = "degraded"
		} else {
			checks["cache"] = "ok"
		}
	}

	return c.JSON(fiber.Map{
		"ready":  true,
		"checks": checks,
	})
}

// Metrics returns the current metrics snapshot
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(h.metrics.GetSnapshot())
}

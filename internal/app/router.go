package app

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidlink/internal/config"
	"github.com/KeremKalyoncu/vidlink/internal/handlers"
	"github.com/KeremKalyoncu/vidlink/internal/metrics"
	"github.com/KeremKalyoncu/vidlink/internal/middleware"
)

// Paths whose handlers answer CORS themselves
var selfCORSPaths = map[string]bool{
	"/":                   true,
	"/api/get_video_info": true,
	"/proxy":              true,
}

// Routes bundles the handlers mounted by NewRouter
type Routes struct {
	VideoInfo   *handlers.VideoInfoHandler
	Proxy       *handlers.ProxyHandler
	Health      *handlers.HealthHandler
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics

	// AccessLog receives fiber access lines; nil means stdout
	AccessLog io.Writer
}

// NewRouter builds the Fiber app with the middleware stack and every route
func NewRouter(cfg config.APIConfig, routes Routes, zapLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "vidlink",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(zapLogger),
	})

	accessLog := routes.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		Output: accessLog,
	}))
	app.Use(middleware.CompressionMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
		Next: func(c *fiber.Ctx) bool {
			return selfCORSPaths[c.Path()]
		},
	}))

	m := routes.Metrics
	if m == nil {
		m = metrics.GetMetrics()
	}
	countRequest := func(c *fiber.Ctx) error {
		m.IncrementRequests()
		return c.Next()
	}

	// Video info
	for _, path := range []string{"/api/get_video_info", "/"} {
		app.Options(path, routes.VideoInfo.Preflight)
		app.Post(path, countRequest, routes.VideoInfo.GetVideoInfo)
	}

	// Media proxy
	app.Options("/proxy", routes.Proxy.Preflight)
	app.Get("/proxy", routes.RateLimiter.Middleware(), routes.Proxy.Proxy)

	// Health and metrics
	app.Get("/health", routes.Health.BasicHealth)
	app.Get("/health/live", routes.Health.Liveness)
	app.Get("/health/ready", routes.Health.Readiness)
	app.Get("/metrics", routes.Health.Metrics)

	return app
}

// Router builds the Fiber app for this container
func (c *Container) Router() *fiber.App {
	return NewRouter(c.Config.API, Routes{
		VideoInfo:   c.VideoInfoHandler,
		Proxy:       c.ProxyHandler,
		Health:      c.HealthHandler,
		RateLimiter: c.RateLimiter,
		Metrics:     c.Metrics,
	}, c.Logger)
}

package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidlink/internal/cache"
	"github.com/KeremKalyoncu/vidlink/internal/cleanup"
	"github.com/KeremKalyoncu/vidlink/internal/config"
	"github.com/KeremKalyoncu/vidlink/internal/extractor"
	"github.com/KeremKalyoncu/vidlink/internal/handlers"
	"github.com/KeremKalyoncu/vidlink/internal/metrics"
	"github.com/KeremKalyoncu/vidlink/internal/middleware"
	"github.com/KeremKalyoncu/vidlink/internal/pool"
	"github.com/KeremKalyoncu/vidlink/internal/videoinfo"
)

// Upstream header timeout for proxied media
const proxyHeaderTimeout = 30 * time.Second

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
	Ytdlp         *extractor.YtDlp
	Cache         *cache.DistributedCache // nil when REDIS_ADDR is unset
	Service       *videoinfo.Service
	HTTPClient    *pool.HTTPClientPool
	RateLimiter   *middleware.RateLimiter
	CookieSweeper *cleanup.CookieSweeper

	VideoInfoHandler *handlers.VideoInfoHandler
	ProxyHandler     *handlers.ProxyHandler
	HealthHandler    *handlers.HealthHandler
}

// NewContainer wires every component from the loaded configuration.
// A Redis that cannot be reached disables the cache instead of failing startup.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger.Info("Configuration loaded successfully",
		zap.String("address", cfg.Address()),
		zap.String("ytdlp_path", cfg.Extractor.YtdlpPath),
		zap.Duration("ytdlp_timeout", cfg.Extractor.YtdlpTimeout),
		zap.Duration("socket_timeout", cfg.Extractor.SocketTimeout),
		zap.Bool("cache_enabled", cfg.Cache.Enabled()),
		zap.Bool("bilibili_cookies", cfg.Cookies.Bilibili != ""),
		zap.Bool("douyin_cookies", cfg.Cookies.Douyin != ""),
		zap.Bool("youtube_cookies", cfg.Cookies.YouTube != ""),
	)

	m := metrics.GetMetrics()

	ytdlp := extractor.NewYtDlp(cfg.Extractor.YtdlpPath, cfg.Extractor.YtdlpTimeout, logger)
	if err := ytdlp.Available(); err != nil {
		logger.Warn("yt-dlp binary not found; readiness will report unavailable", zap.Error(err))
	}

	var distCache *cache.DistributedCache
	if cfg.Cache.Enabled() {
		dc, err := cache.NewDistributedCache(cfg.Cache, logger)
		if err != nil {
			logger.Warn("Response cache disabled", zap.Error(err))
		} else {
			distCache = dc
		}
	}

	// Keep the interface nil when there is no cache
	var infoCache cache.VideoInfoCache
	var cachePinger handlers.Pinger
	if distCache != nil {
		infoCache = distCache
		cachePinger = distCache
	}

	service := videoinfo.NewService(ytdlp, cfg.Extractor, cfg.Cookies, infoCache, m, logger)
	// Without an allowlist the proxy may only reach public addresses
	httpClient := pool.NewHTTPClientPool(proxyHeaderTimeout, len(cfg.Proxy.AllowedHosts) == 0)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		Metrics:       m,
		Ytdlp:         ytdlp,
		Cache:         distCache,
		Service:       service,
		HTTPClient:    httpClient,
		RateLimiter:   middleware.NewRateLimiter(cfg.Proxy.RateLimit, time.Minute),
		CookieSweeper: cleanup.NewCookieSweeper(cfg.Extractor.TempDir, cfg.Cleanup.MaxAge, cfg.Cleanup.Interval, logger),

		VideoInfoHandler: handlers.NewVideoInfoHandler(service, logger),
		ProxyHandler:     handlers.NewProxyHandler(httpClient.Client(), cfg.Proxy.AllowedHosts, cfg.API.WriteTimeout, m, logger),
		HealthHandler:    handlers.NewHealthHandler(ytdlp, cachePinger, m, logger),
	}, nil
}

// Start launches background services
func (c *Container) Start(ctx context.Context) {
	c.CookieSweeper.Start(ctx)
	c.Logger.Info("Cookie sweeper started",
		zap.String("temp_dir", c.Config.Extractor.TempDir),
		zap.Duration("max_age", c.Config.Cleanup.MaxAge),
	)
}

// Close releases all resources
func (c *Container) Close(ctx context.Context) error {
	c.Logger.Info("Closing application container")

	c.CookieSweeper.Stop()
	c.RateLimiter.Close()
	c.HTTPClient.Close()

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			return fmt.Errorf("failed to close cache: %w", err)
		}
	}

	return nil
}

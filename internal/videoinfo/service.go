// Package videoinfo resolves a page URL into a downloadable VideoInfo payload.
package videoinfo

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidlink/internal/cache"
	"github.com/KeremKalyoncu/vidlink/internal/config"
	apperrors "github.com/KeremKalyoncu/vidlink/internal/errors"
	"github.com/KeremKalyoncu/vidlink/internal/extractor"
	"github.com/KeremKalyoncu/vidlink/internal/metrics"
	"github.com/KeremKalyoncu/vidlink/internal/normalize"
	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// Service runs one extraction per request. It holds no per-request state.
type Service struct {
	extractor     extractor.Extractor
	cookies       config.CookieConfig
	tempDir       string
	socketTimeout time.Duration
	cache         cache.VideoInfoCache // nil disables caching
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewService creates a video info service. infoCache may be nil.
func NewService(
	ext extractor.Extractor,
	cfg config.ExtractorConfig,
	cookies config.CookieConfig,
	infoCache cache.VideoInfoCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	if m == nil {
		m = metrics.GetMetrics()
	}
	return &Service{
		extractor:     ext,
		cookies:       cookies,
		tempDir:       cfg.TempDir,
		socketTimeout: cfg.SocketTimeout,
		cache:         infoCache,
		metrics:       m,
		logger:        logger,
	}
}

// Resolve detects the platform, runs the extractor once and normalizes the result.
// Returned errors are *apperrors.CustomError values carrying the user-facing message.
func (s *Service) Resolve(ctx context.Context, rawURL string) (*types.VideoInfo, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return nil, apperrors.ErrURLRequired
	}

	platform := extractor.DetectPlatform(url)
	opts := extractor.OptionsFor(platform)
	if s.socketTimeout > 0 {
		opts = opts.WithSocketTimeout(s.socketTimeout)
	}

	if cached := s.lookup(ctx, url); cached != nil {
		s.metrics.RecordCacheHit(platform)
		s.logger.Debug("Video info served from cache",
			zap.String("url", url),
			zap.String("platform", platform.String()),
		)
		return cached, nil
	}

	s.metrics.RecordExtractionStart(platform)
	started := time.Now()

	result, err := s.extract(ctx, url, platform, opts)
	if err != nil {
		s.metrics.RecordExtractionFailure(platform, time.Since(started))
		s.logger.Error("Extraction failed",
			zap.String("url", url),
			zap.String("platform", platform.String()),
			zap.Error(err),
		)
		return nil, extractor.ClassifyError(platform, err)
	}

	info, err := normalize.Normalize(result, platform)
	if err != nil {
		s.metrics.RecordExtractionFailure(platform, time.Since(started))
		s.logger.Error("Normalization failed",
			zap.String("url", url),
			zap.String("platform", platform.String()),
			zap.Error(err),
		)
		return nil, apperrors.ErrProcessingFailed.WithCause(err).WithMessage(err.Error())
	}

	s.metrics.RecordExtractionSuccess(platform, info.DownloadType, time.Since(started))
	s.logger.Info("Video info resolved",
		zap.String("platform", platform.String()),
		zap.String("download_type", string(info.DownloadType)),
		zap.Int("formats", len(result.Formats)),
		zap.Duration("elapsed", time.Since(started)),
	)

	s.store(ctx, url, info)
	return info, nil
}

// extract attaches the platform cookie jar, if any, for the duration of one call.
// A jar that cannot be written is skipped rather than failing the request.
func (s *Service) extract(ctx context.Context, url string, platform types.Platform, opts extractor.Options) (*types.ExtractionResult, error) {
	if material := s.cookies.For(platform); material != "" {
		jar, err := extractor.NewCookieJar(s.tempDir, platform, material)
		if err != nil {
			s.logger.Warn("Continuing without cookies",
				zap.String("platform", platform.String()),
				zap.Error(err),
			)
		} else {
			defer func() {
				if err := jar.Close(); err != nil {
					s.logger.Warn("Failed to remove cookies file",
						zap.String("path", jar.Path()),
						zap.Error(err),
					)
				}
			}()
			opts = opts.WithCookieFile(jar.Path())
		}
	}

	return s.extractor.Extract(ctx, url, opts)
}

func (s *Service) lookup(ctx context.Context, url string) *types.VideoInfo {
	if s.cache == nil {
		return nil
	}
	info, err := s.cache.Get(ctx, url)
	if err != nil {
		s.logger.Warn("Cache lookup failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	return info
}

func (s *Service) store(ctx context.Context, url string, info *types.VideoInfo) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, url, info); err != nil {
		s.logger.Warn("Cache store failed", zap.String("url", url), zap.Error(err))
	}
}

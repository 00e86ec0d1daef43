package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidlink/internal/config"
	"github.com/KeremKalyoncu/vidlink/internal/types"
)

const keyPrefix = "vidlink:info:"

// VideoInfoCache stores normalized payloads by source URL
type VideoInfoCache interface {
	Get(ctx context.Context, url string) (*types.VideoInfo, error)
	Set(ctx context.Context, url string, info *types.VideoInfo) error
}

// DistributedCache keeps VideoInfo payloads in Redis for a short TTL.
// Media URLs handed out by platforms expire, so entries must stay short-lived.
type DistributedCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewDistributedCache connects to Redis and verifies the connection
func NewDistributedCache(cfg config.CacheConfig, logger *zap.Logger) (*DistributedCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     20,
		MinIdleConns: 2,
		MaxRetries:   1,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolTimeout:  3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Response cache initialized",
		zap.String("redis_addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
		zap.Duration("ttl", cfg.TTL),
	)

	return &DistributedCache{
		client: client,
		logger: logger,
		ttl:    cfg.TTL,
	}, nil
}

// cacheKey hashes the URL so arbitrary input never reaches the key space raw
func cacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return keyPrefix + hex.EncodeToString(hash[:])
}

// Get returns the cached payload, or nil when there is none
func (dc *DistributedCache) Get(ctx context.Context, url string) (*types.VideoInfo, error) {
	data, err := dc.client.Get(ctx, cacheKey(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		dc.logger.Warn("Failed to read cached video info",
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, err
	}

	var info types.VideoInfo
	if err := json.Unmarshal(data, &info); err != nil {
		dc.logger.Error("Failed to unmarshal cached video info",
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, err
	}

	return &info, nil
}

// Set stores a payload under the URL
func (dc *DistributedCache) Set(ctx context.Context, url string, info *types.VideoInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal video info: %w", err)
	}

	if err := dc.client.Set(ctx, cacheKey(url), data, dc.ttl).Err(); err != nil {
		dc.logger.Error("Failed to cache video info",
			zap.String("url", url),
			zap.Error(err),
		)
		return err
	}

	dc.logger.Debug("Cached video info",
		zap.String("url", url),
		zap.String("platform", info.Platform.String()),
		zap.Duration("ttl", dc.ttl),
	)

	return nil
}

// Ping checks Redis reachability for readiness probes
func (dc *DistributedCache) Ping(ctx context.Context) error {
	return dc.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (dc *DistributedCache) Close() error {
	return dc.client.Close()
}

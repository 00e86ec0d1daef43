package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidlink/internal/config"
)

func TestCacheKey(t *testing.T) {
	a := cacheKey("https://youtu.be/abc")
	b := cacheKey("https://youtu.be/abd")

	assert.True(t, strings.HasPrefix(a, keyPrefix))
	assert.Len(t, strings.TrimPrefix(a, keyPrefix), 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, cacheKey("https://youtu.be/abc"))
}

func TestNewDistributedCacheUnreachable(t *testing.T) {
	_, err := NewDistributedCache(config.CacheConfig{
		RedisAddr: "127.0.0.1:1",
		TTL:       time.Minute,
	}, zap.NewNop())
	assert.Error(t, err)
}

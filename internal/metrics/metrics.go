package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// Metrics collects request and extraction counters
type Metrics struct {
	// Request metrics
	TotalRequests      atomic.Uint64
	SuccessfulRequests atomic.Uint64
	FailedRequests     atomic.Uint64
	ActiveExtractions  atomic.Int64
	CacheHits          atomic.Uint64
	ProxiedRequests    atomic.Uint64

	// Last extraction latency, microseconds
	LastExtractionDuration atomic.Int64

	Started time.Time

	platformStats sync.Map // types.Platform -> *PlatformStats
}

// PlatformStats tracks extraction outcomes per platform
type PlatformStats struct {
	Total     atomic.Uint64
	Succeeded atomic.Uint64
	Failed    atomic.Uint64
	Separate  atomic.Uint64 // successes answered with separate streams
}

var globalMetrics = New()

// New creates an empty metrics set
func New() *Metrics {
	return &Metrics{Started: time.Now()}
}

// GetMetrics returns the process-wide metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// IncrementRequests counts an incoming video info request
func (m *Metrics) IncrementRequests() {
	m.TotalRequests.Add(1)
}

// RecordCacheHit counts a request answered from the response cache
func (m *Metrics) RecordCacheHit(platform types.Platform) {
	m.CacheHits.Add(1)
	m.SuccessfulRequests.Add(1)
	m.stats(platform).Total.Add(1)
	m.stats(platform).Succeeded.Add(1)
}

// RecordProxied counts a proxied media request
func (m *Metrics) RecordProxied() {
	m.ProxiedRequests.Add(1)
}

// RecordExtractionStart marks an extraction as in flight
func (m *Metrics) RecordExtractionStart(platform types.Platform) {
	m.ActiveExtractions.Add(1)
	m.stats(platform).Total.Add(1)
}

// RecordExtractionSuccess records a normalized result
func (m *Metrics) RecordExtractionSuccess(platform types.Platform, downloadType types.DownloadType, duration time.Duration) {
	m.ActiveExtractions.Add(-1)
	m.SuccessfulRequests.Add(1)
	m.LastExtractionDuration.Store(duration.Microseconds())

	stats := m.stats(platform)
	stats.Succeeded.Add(1)
	if downloadType == types.DownloadSeparate {
		stats.Separate.Add(1)
	}
}

// RecordExtractionFailure records a failed extraction
func (m *Metrics) RecordExtractionFailure(platform types.Platform, duration time.Duration) {
	m.ActiveExtractions.Add(-1)
	m.FailedRequests.Add(1)
	m.LastExtractionDuration.Store(duration.Microseconds())
	m.stats(platform).Failed.Add(1)
}

func (m *Metrics) stats(platform types.Platform) *PlatformStats {
	s, _ := m.platformStats.LoadOrStore(platform, &PlatformStats{})
	return s.(*PlatformStats)
}

// GetSnapshot returns current metrics snapshot
func (m *Metrics) GetSnapshot() map[string]interface{} {
	total := m.SuccessfulRequests.Load() + m.FailedRequests.Load()
	successRate := float64(0)
	if total > 0 {
		successRate = float64(m.SuccessfulRequests.Load()) / float64(total) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":      int64(time.Since(m.Started).Seconds()),
		"total_requests":      m.TotalRequests.Load(),
		"successful_requests": m.SuccessfulRequests.Load(),
		"failed_requests":     m.FailedRequests.Load(),
		"active_extractions":  m.ActiveExtractions.Load(),
		"cache_hits":          m.CacheHits.Load(),
		"proxied_requests":    m.ProxiedRequests.Load(),
		"success_rate":        successRate,
		"last_extraction_ms":  m.LastExtractionDuration.Load() / 1000,
		"platforms":           m.platformSnapshot(),
	}
}

func (m *Metrics) platformSnapshot() map[string]interface{} {
	platforms := make(map[string]interface{})

	m.platformStats.Range(func(key, value interface{}) bool {
		stats := value.(*PlatformStats)
		platforms[key.(types.Platform).String()] = map[string]interface{}{
			"total":     stats.Total.Load(),
			"succeeded": stats.Succeeded.Load(),
			"failed":    stats.Failed.Load(),
			"separate":  stats.Separate.Load(),
		}
		return true
	})

	return platforms
}

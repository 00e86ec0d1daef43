package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KeremKalyoncu/vidlink/internal/types"
)

func TestMetricsSnapshot(t *testing.T) {
	m := New()

	m.IncrementRequests()
	m.IncrementRequests()
	m.IncrementRequests()

	m.RecordExtractionStart(types.PlatformBilibili)
	m.RecordExtractionSuccess(types.PlatformBilibili, types.DownloadSeparate, 20*time.Millisecond)

	m.RecordExtractionStart(types.PlatformYouTube)
	m.RecordExtractionFailure(types.PlatformYouTube, 5*time.Millisecond)

	m.RecordCacheHit(types.PlatformBilibili)

	snapshot := m.GetSnapshot()
	assert.Equal(t, uint64(3), snapshot["total_requests"])
	assert.Equal(t, uint64(2), snapshot["successful_requests"])
	assert.Equal(t, uint64(1), snapshot["failed_requests"])
	assert.Equal(t, int64(0), snapshot["active_extractions"])
	assert.Equal(t, uint64(1), snapshot["cache_hits"])
	assert.InDelta(t, 66.66, snapshot["success_rate"], 0.1)

	platforms, ok := snapshot["platforms"].(map[string]interface{})
	require.True(t, ok)
	bilibili := platforms["bilibili"].(map[string]interface{})
	assert.Equal(t, uint64(2), bilibili["total"])
	assert.Equal(t, uint64(2), bilibili["succeeded"])
	assert.Equal(t, uint64(1), bilibili["separate"])
	youtube := platforms["youtube"].(map[string]interface{})
	assert.Equal(t, uint64(1), youtube["failed"])
}

func TestGetMetricsIsShared(t *testing.T) {
	assert.Same(t, GetMetrics(), GetMetrics())
}

package testutil

import (
	"context"
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidlink/internal/extractor"
	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// ExtractCall records one Extract invocation
type ExtractCall struct {
	URL     string
	Options extractor.Options
	// CookieFileExisted is whether opts.CookieFile was on disk during the call
	CookieFileExisted bool
}

// FakeExtractor is a scripted extractor.Extractor
type FakeExtractor struct {
	mu     sync.Mutex
	result *types.ExtractionResult
	err    error
	calls  []ExtractCall
}

// NewFakeExtractor returns a fake answering every call with result and err
func NewFakeExtractor(result *types.ExtractionResult, err error) *FakeExtractor {
	return &FakeExtractor{result: result, err: err}
}

// Extract implements extractor.Extractor
func (f *FakeExtractor) Extract(ctx context.Context, url string, opts extractor.Options) (*types.ExtractionResult, error) {
	call := ExtractCall{URL: url, Options: opts}
	if opts.CookieFile != "" {
		_, err := os.Stat(opts.CookieFile)
		call.CookieFileExisted = err == nil
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.result, f.err
}

// Calls returns the recorded invocations
func (f *FakeExtractor) Calls() []ExtractCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]ExtractCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// LastCall returns the most recent invocation
func (f *FakeExtractor) LastCall() (ExtractCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.calls) == 0 {
		return ExtractCall{}, false
	}
	return f.calls[len(f.calls)-1], true
}

// FakeCache is an in-memory cache.VideoInfoCache
type FakeCache struct {
	mu        sync.Mutex
	entries   map[string]*types.VideoInfo
	shouldErr bool
}

// NewFakeCache creates an empty fake cache
func NewFakeCache() *FakeCache {
	return &FakeCache{entries: make(map[string]*types.VideoInfo)}
}

// Get returns a stored payload, or nil
func (c *FakeCache) Get(ctx context.Context, url string) (*types.VideoInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shouldErr {
		return nil, ErrFakeCacheFailure
	}
	return c.entries[url], nil
}

// Set stores a payload
func (c *FakeCache) Set(ctx context.Context, url string, info *types.VideoInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shouldErr {
		return ErrFakeCacheFailure
	}
	c.entries[url] = info
	return nil
}

// SetShouldError makes every operation fail
func (c *FakeCache) SetShouldError(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shouldErr = fail
}

// Len returns the number of stored entries
func (c *FakeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ErrFakeCacheFailure is returned by a failing FakeCache
var ErrFakeCacheFailure = errors.New("fake cache failure")

// Test fixtures
var (
	// SampleYouTubeResult has one muxed mp4 and a top-level URL
	SampleYouTubeResult = &types.ExtractionResult{
		Title:     "Test Video",
		Thumbnail: "https://i.ytimg.com/vi/abc/hq.jpg",
		Duration:  212,
		Ext:       "mp4",
		URL:       "https://rr1.googlevideo.com/top.mp4",
		Formats: []types.FormatRecord{
			{FormatID: "18", Ext: "mp4", VideoCodec: "avc1", AudioCodec: "mp4a", Width: 640, Height: 360, Filesize: 1000, URL: "https://rr1.googlevideo.com/360.mp4"},
			{FormatID: "22", Ext: "mp4", VideoCodec: "avc1", AudioCodec: "mp4a", Width: 1280, Height: 720, Filesize: 4000, URL: "https://rr1.googlevideo.com/720.mp4"},
		},
	}

	// SampleBilibiliDashResult only has separate video and audio streams
	SampleBilibiliDashResult = &types.ExtractionResult{
		Title:    "Bilibili Clip",
		Duration: 95,
		Formats: []types.FormatRecord{
			{FormatID: "30080", Ext: "mp4", VideoCodec: "avc1", AudioCodec: "none", Width: 1920, Height: 1080, Filesize: 9000, URL: "https://upos.bilivideo.com/v.m4s"},
			{FormatID: "30280", Ext: "m4a", VideoCodec: "none", AudioCodec: "mp4a", AudioBitrate: 320, Filesize: 1000, URL: "https://upos.bilivideo.com/a.m4s"},
		},
	}
)

// TestLogger returns a logger that discards output
func TestLogger() *zap.Logger {
	return zap.NewNop()
}

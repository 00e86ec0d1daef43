package videoinfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KeremKalyoncu/vidlink/internal/config"
	apperrors "github.com/KeremKalyoncu/vidlink/internal/errors"
	"github.com/KeremKalyoncu/vidlink/internal/extractor"
	"github.com/KeremKalyoncu/vidlink/internal/metrics"
	"github.com/KeremKalyoncu/vidlink/internal/testutil"
	"github.com/KeremKalyoncu/vidlink/internal/types"
)

const sampleCookies = "# Netscape HTTP Cookie File\n.bilibili.com\tTRUE\t/\tFALSE\t2147483647\tSESSDATA\tabc\n"

func newService(t *testing.T, fake *testutil.FakeExtractor, cookies config.CookieConfig, infoCache *testutil.FakeCache) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.ExtractorConfig{TempDir: dir, SocketTimeout: 9 * time.Second}

	var svc *Service
	if infoCache != nil {
		svc = NewService(fake, cfg, cookies, infoCache, metrics.New(), testutil.TestLogger())
	} else {
		svc = NewService(fake, cfg, cookies, nil, metrics.New(), testutil.TestLogger())
	}
	return svc, dir
}

func TestResolveRequiresURL(t *testing.T) {
	fake := testutil.NewFakeExtractor(testutil.SampleYouTubeResult, nil)
	svc, _ := newService(t, fake, config.CookieConfig{}, nil)

	for _, url := range []string{"", "   ", "\t\n"} {
		_, err := svc.Resolve(context.Background(), url)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrURLRequired)
		assert.Equal(t, 400, apperrors.GetStatusCode(err))
	}
	assert.Empty(t, fake.Calls())
}

func TestResolveYouTube(t *testing.T) {
	fake := testutil.NewFakeExtractor(testutil.SampleYouTubeResult, nil)
	svc, _ := newService(t, fake, config.CookieConfig{}, nil)

	info, err := svc.Resolve(context.Background(), "  https://www.youtube.com/watch?v=abc  ")
	require.NoError(t, err)
	assert.Equal(t, types.PlatformYouTube, info.Platform)
	assert.Equal(t, types.DownloadSingle, info.DownloadType)
	assert.Equal(t, "https://rr1.googlevideo.com/720.mp4", info.DownloadURL)

	call, ok := fake.LastCall()
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", call.URL)
	assert.Equal(t, 9*time.Second, call.Options.SocketTimeout)
	assert.Equal(t, extractor.OptionsFor(types.PlatformYouTube).Format, call.Options.Format)
	assert.Empty(t, call.Options.CookieFile)
}

func TestResolveBilibiliSeparate(t *testing.T) {
	fake := testutil.NewFakeExtractor(testutil.SampleBilibiliDashResult, nil)
	svc, _ := newService(t, fake, config.CookieConfig{}, nil)

	info, err := svc.Resolve(context.Background(), "https://www.bilibili.com/video/BV1xx")
	require.NoError(t, err)
	assert.Equal(t, types.DownloadSeparate, info.DownloadType)
	assert.Equal(t, "https://upos.bilivideo.com/v.m4s", info.VideoURL)
	assert.Equal(t, "https://upos.bilivideo.com/a.m4s", info.AudioURL)
	assert.Equal(t, int64(10000), info.Filesize)
}

func TestResolveCookieJarRemovedAfterSuccess(t *testing.T) {
	fake := testutil.NewFakeExtractor(testutil.SampleBilibiliDashResult, nil)
	svc, dir := newService(t, fake, config.CookieConfig{Bilibili: sampleCookies}, nil)

	_, err := svc.Resolve(context.Background(), "https://www.bilibili.com/video/BV1xx")
	require.NoError(t, err)

	call, ok := fake.LastCall()
	require.True(t, ok)
	require.NotEmpty(t, call.Options.CookieFile)
	assert.Equal(t, dir, filepath.Dir(call.Options.CookieFile))
	assert.True(t, call.CookieFileExisted)

	_, statErr := os.Stat(call.Options.CookieFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolveCookieJarRemovedAfterFailure(t *testing.T) {
	fake := testutil.NewFakeExtractor(nil, errors.New("ERROR: Video unavailable"))
	svc, dir := newService(t, fake, config.CookieConfig{Douyin: "ttwid=abc; msToken=def"}, nil)

	_, err := svc.Resolve(context.Background(), "https://www.tiktok.com/@user/video/1")
	require.Error(t, err)
	assert.Equal(t, extractor.MsgUnavailable, apperrors.GetErrorMessage(err))

	call, ok := fake.LastCall()
	require.True(t, ok)
	assert.True(t, call.CookieFileExisted)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestResolveContinuesWithoutCookiesWhenJarFails(t *testing.T) {
	fake := testutil.NewFakeExtractor(testutil.SampleYouTubeResult, nil)
	svc := NewService(fake,
		config.ExtractorConfig{TempDir: filepath.Join(t.TempDir(), "missing")},
		config.CookieConfig{YouTube: sampleCookies},
		nil, metrics.New(), testutil.TestLogger(),
	)

	info, err := svc.Resolve(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.True(t, info.Success)

	call, ok := fake.LastCall()
	require.True(t, ok)
	assert.Empty(t, call.Options.CookieFile)
}

func TestResolveClassifiesCookieErrors(t *testing.T) {
	fake := testutil.NewFakeExtractor(nil, errors.New("Fresh cookies are needed"))
	svc, _ := newService(t, fake, config.CookieConfig{}, nil)

	_, err := svc.Resolve(context.Background(), "https://v.douyin.com/abc/")
	require.Error(t, err)
	assert.Equal(t, extractor.MsgCookieRequired, apperrors.GetErrorMessage(err))
	assert.Equal(t, 500, apperrors.GetStatusCode(err))
}

func TestResolveProcessingFailure(t *testing.T) {
	fake := testutil.NewFakeExtractor(nil, nil)
	svc, _ := newService(t, fake, config.CookieConfig{}, nil)

	_, err := svc.Resolve(context.Background(), "https://x.com/a/status/1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrProcessingFailed)
}

func TestResolveUsesCache(t *testing.T) {
	fake := testutil.NewFakeExtractor(testutil.SampleYouTubeResult, nil)
	infoCache := testutil.NewFakeCache()
	svc, _ := newService(t, fake, config.CookieConfig{}, infoCache)

	first, err := svc.Resolve(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, 1, infoCache.Len())

	second, err := svc.Resolve(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, fake.Calls(), 1)
}

func TestResolveIgnoresCacheFailures(t *testing.T) {
	fake := testutil.NewFakeExtractor(testutil.SampleYouTubeResult, nil)
	infoCache := testutil.NewFakeCache()
	infoCache.SetShouldError(true)
	svc, _ := newService(t, fake, config.CookieConfig{}, infoCache)

	info, err := svc.Resolve(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.True(t, info.Success)
	assert.Len(t, fake.Calls(), 1)
}

func TestResolveFailuresAreNotCached(t *testing.T) {
	fake := testutil.NewFakeExtractor(nil, errors.New("Unsupported URL"))
	infoCache := testutil.NewFakeCache()
	svc, _ := newService(t, fake, config.CookieConfig{}, infoCache)

	_, err := svc.Resolve(context.Background(), "https://example.com/v")
	require.Error(t, err)
	assert.Equal(t, "Download failed: Unsupported URL", apperrors.GetErrorMessage(err))
	assert.Equal(t, 0, infoCache.Len())
}

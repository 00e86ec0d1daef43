package extractor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KeremKalyoncu/vidlink/internal/types"
)

func TestOptionsForDefault(t *testing.T) {
	for _, p := range []types.Platform{types.PlatformTwitter, types.PlatformUnknown} {
		opts := OptionsFor(p)
		assert.Equal(t, "best[ext=mp4]/best", opts.Format, p)
		assert.Equal(t, desktopUserAgent, opts.Header("User-Agent"), p)
		assert.Empty(t, opts.Header("Referer"), p)
		assert.Empty(t, opts.ExtractorArgs, p)
		assert.Equal(t, DefaultSocketTimeout, opts.SocketTimeout, p)
	}
}

func TestOptionsForBilibili(t *testing.T) {
	opts := OptionsFor(types.PlatformBilibili)

	assert.Contains(t, opts.Format, "bestvideo")
	assert.Contains(t, opts.Format, "+bestaudio")
	assert.Equal(t, "https://www.bilibili.com/", opts.Header("Referer"))
	assert.Equal(t, desktopUserAgent, opts.Header("User-Agent"))
	assert.NotEmpty(t, opts.Header("Accept-Language"))
}

func TestOptionsForDouyinAndTikTokShareCDNConfig(t *testing.T) {
	douyin := OptionsFor(types.PlatformDouyin)
	tiktok := OptionsFor(types.PlatformTikTok)

	assert.Equal(t, douyin, tiktok)
	assert.Equal(t, "https://www.douyin.com/", douyin.Header("Referer"))
	assert.Equal(t, mobileUserAgent, douyin.Header("User-Agent"))
}

func TestOptionsForYouTube(t *testing.T) {
	opts := OptionsFor(types.PlatformYouTube)

	assert.Contains(t, opts.Format, "height<=1080")
	assert.Contains(t, opts.ExtractorArgs, "player_client=android,web,ios")
	assert.Contains(t, opts.ExtractorArgs, "skip=hls,dash")
}

func TestOptionsModifiersReturnCopies(t *testing.T) {
	base := OptionsFor(types.PlatformBilibili)

	withCookies := base.WithCookieFile("/tmp/cookies-x.txt")
	withCookies.Headers[0].Value = "changed"
	slower := base.WithSocketTimeout(10 * time.Second)

	assert.Empty(t, base.CookieFile)
	assert.Equal(t, desktopUserAgent, base.Header("User-Agent"))
	assert.Equal(t, "/tmp/cookies-x.txt", withCookies.CookieFile)
	assert.Equal(t, DefaultSocketTimeout, base.SocketTimeout)
	assert.Equal(t, 10*time.Second, slower.SocketTimeout)

	// a fresh call is never affected by earlier modifications
	assert.Equal(t, desktopUserAgent, OptionsFor(types.PlatformBilibili).Header("User-Agent"))
}

func TestRefererFor(t *testing.T) {
	assert.Equal(t, "https://www.bilibili.com/", RefererFor(types.PlatformBilibili))
	assert.Equal(t, "https://www.douyin.com/", RefererFor(types.PlatformTikTok))
	assert.Equal(t, "https://twitter.com/", RefererFor(types.PlatformTwitter))
	assert.Empty(t, RefererFor(types.PlatformYouTube))
}

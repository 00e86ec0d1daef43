package extractor

import (
	"time"

	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// Header is a single request header passed to yt-dlp
type Header struct {
	Name  string
	Value string
}

// Options configures one extraction call. It is a value type: every
// modifier returns a copy, so a platform's defaults are never shared.
type Options struct {
	Format        string
	Headers       []Header
	SocketTimeout time.Duration
	ExtractorArgs string
	CookieFile    string
}

// Header returns the value of the named header, or "" when absent
func (o Options) Header(name string) string {
	for _, h := range o.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// WithCookieFile returns a copy referencing the given cookie jar
func (o Options) WithCookieFile(path string) Options {
	o.Headers = append([]Header(nil), o.Headers...)
	o.CookieFile = path
	return o
}

// WithSocketTimeout returns a copy with a different socket timeout
func (o Options) WithSocketTimeout(d time.Duration) Options {
	o.Headers = append([]Header(nil), o.Headers...)
	o.SocketTimeout = d
	return o
}

const (
	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	mobileUserAgent  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

	bilibiliReferer = "https://www.bilibili.com/"
	douyinReferer   = "https://www.douyin.com/"

	// DefaultSocketTimeout is used when the caller does not override it
	DefaultSocketTimeout = 8 * time.Second
)

// Format selectors
const (
	formatDefault  = "best[ext=mp4]/best"
	formatBilibili = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/bestvideo+bestaudio/best[ext=mp4]/best"
	formatYouTube  = "best[height<=1080][ext=mp4]/best[height<=1080]/best"

	// Rotate between player clients and skip manifest-only formats
	youtubeExtractorArgs = "youtube:player_client=android,web,ios;skip=hls,dash"
)

// OptionsFor builds the extraction options for a platform
func OptionsFor(platform types.Platform) Options {
	switch platform {
	case types.PlatformBilibili:
		return Options{
			Format: formatBilibili,
			Headers: []Header{
				{"User-Agent", desktopUserAgent},
				{"Referer", bilibiliReferer},
				{"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
				{"Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8"},
				{"Accept-Encoding", "gzip, deflate, br"},
			},
			SocketTimeout: DefaultSocketTimeout,
		}

	case types.PlatformDouyin, types.PlatformTikTok:
		return Options{
			Format: formatDefault,
			Headers: []Header{
				{"User-Agent", mobileUserAgent},
				{"Referer", douyinReferer},
				{"Accept", "*/*"},
				{"Accept-Language", "zh-CN,zh;q=0.9,en-US;q=0.8,en;q=0.7"},
			},
			SocketTimeout: DefaultSocketTimeout,
		}

	case types.PlatformYouTube:
		return Options{
			Format:        formatYouTube,
			Headers:       desktopHeaders(),
			SocketTimeout: DefaultSocketTimeout,
			ExtractorArgs: youtubeExtractorArgs,
		}

	default:
		return Options{
			Format:        formatDefault,
			Headers:       desktopHeaders(),
			SocketTimeout: DefaultSocketTimeout,
		}
	}
}

func desktopHeaders() []Header {
	return []Header{
		{"User-Agent", desktopUserAgent},
		{"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		{"Accept-Language", "en-US,en;q=0.9,zh-CN;q=0.8,zh;q=0.7"},
		{"Accept-Encoding", "gzip, deflate, br"},
	}
}

// RefererFor returns the Referer a platform's CDN expects, or "" when none is needed
func RefererFor(platform types.Platform) string {
	switch platform {
	case types.PlatformBilibili:
		return bilibiliReferer
	case types.PlatformDouyin, types.PlatformTikTok:
		return douyinReferer
	case types.PlatformTwitter:
		return "https://twitter.com/"
	default:
		return ""
	}
}

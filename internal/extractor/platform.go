package extractor

import (
	"strings"

	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// platformMatchers is checked in order; the first platform with a matching
// substring wins, so Douyin is tried before TikTok.
var platformMatchers = []struct {
	platform types.Platform
	needles  []string
}{
	{types.PlatformBilibili, []string{"bilibili.com", "b23.tv"}},
	{types.PlatformTwitter, []string{"twitter.com", "x.com"}},
	{types.PlatformDouyin, []string{"douyin.com", "iesdouyin.com", "v.douyin"}},
	{types.PlatformTikTok, []string{"tiktok.com"}},
	{types.PlatformYouTube, []string{"youtube.com", "youtu.be"}},
}

// DetectPlatform identifies platform from URL
func DetectPlatform(url string) types.Platform {
	url = strings.ToLower(url)

	for _, m := range platformMatchers {
		for _, needle := range m.needles {
			if strings.Contains(url, needle) {
				return m.platform
			}
		}
	}

	return types.PlatformUnknown
}

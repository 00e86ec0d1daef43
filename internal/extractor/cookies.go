package extractor

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// CookieFilePrefix marks cookie jars written by this service in the temp dir
const CookieFilePrefix = "cookies-"

const netscapeHeader = "# Netscape HTTP Cookie File"

// far-future expiry for cookies converted from a header string
const cookieExpiry = 2147483647

// CookieJar is a temporary Netscape cookie file that lives for one request.
// Callers must Close it; Close removes the file and is safe to call twice.
type CookieJar struct {
	path string
}

// NewCookieJar writes cookie material for a platform into dir
func NewCookieJar(dir string, platform types.Platform, material string) (*CookieJar, error) {
	content, err := cookieJarContent(platform, material)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, fmt.Sprintf("%s%s-%s.txt", CookieFilePrefix, platform, uuid.NewString()))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookies file: %w", err)
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write cookies file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write cookies file: %w", err)
	}

	return &CookieJar{path: path}, nil
}

// Path returns the jar location on disk
func (j *CookieJar) Path() string {
	return j.path
}

// Close removes the jar from disk
func (j *CookieJar) Close() error {
	if j == nil || j.path == "" {
		return nil
	}
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// cookieJarContent accepts Netscape jar text, base64 of it, or a
// "name=value; name2=value2" header string.
func cookieJarContent(platform types.Platform, material string) (string, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return "", fmt.Errorf("empty cookie material for %s", platform)
	}

	if looksLikeJar(material) {
		return withTrailingNewline(material), nil
	}

	if decoded, err := base64.StdEncoding.DecodeString(material); err == nil {
		text := strings.TrimSpace(string(decoded))
		if looksLikeJar(text) {
			return withTrailingNewline(text), nil
		}
	}

	return headerToJar(platform, material)
}

func looksLikeJar(text string) bool {
	return strings.HasPrefix(text, "# Netscape") ||
		strings.HasPrefix(text, "# HTTP Cookie File") ||
		strings.Contains(text, "\t")
}

func headerToJar(platform types.Platform, header string) (string, error) {
	domain := cookieDomain(platform)

	var b strings.Builder
	b.WriteString(netscapeHeader + "\n")

	count := 0
	for _, pair := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		fmt.Fprintf(&b, "%s\tTRUE\t/\tFALSE\t%d\t%s\t%s\n", domain, cookieExpiry, name, strings.TrimSpace(value))
		count++
	}

	if count == 0 {
		return "", fmt.Errorf("no cookies found in material for %s", platform)
	}

	return b.String(), nil
}

func cookieDomain(platform types.Platform) string {
	switch platform {
	case types.PlatformBilibili:
		return ".bilibili.com"
	case types.PlatformDouyin:
		return ".douyin.com"
	case types.PlatformTikTok:
		return ".tiktok.com"
	case types.PlatformYouTube:
		return ".youtube.com"
	case types.PlatformTwitter:
		return ".x.com"
	default:
		return "." + string(platform)
	}
}

func withTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

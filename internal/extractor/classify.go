package extractor

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/KeremKalyoncu/vidlink/internal/errors"
	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// User-facing extraction messages
const (
	MsgAgeRestricted  = "Download failed: Video is age-restricted and requires login."
	MsgUnavailable    = "Download failed: Video is unavailable or deleted."
	MsgCookieRequired = "Douyin/TikTok requires cookies for some videos. Please try a different public video or use the mobile share link."
	MsgTimeout        = "Download failed: extraction timed out"

	downloadFailedPrefix = "Download failed: "
)

var (
	ageRestrictedPatterns = []string{"age-restricted", "age restricted", "confirm your age"}
	unavailablePatterns   = []string{"video unavailable", "is unavailable", "has been removed", "been deleted"}
)

// ClassifyError rewrites an extractor failure into the user-facing
// extraction error. The original error is kept as the cause for logs.
func ClassifyError(platform types.Platform, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrExtractionFailed.WithCause(err).WithMessage(MsgTimeout)
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case containsAny(lower, ageRestrictedPatterns):
		msg = MsgAgeRestricted
	case containsAny(lower, unavailablePatterns):
		msg = MsgUnavailable
	case (platform == types.PlatformDouyin || platform == types.PlatformTikTok) && strings.Contains(lower, "cookie"):
		msg = MsgCookieRequired
	default:
		msg = downloadFailedPrefix + msg
	}

	return apperrors.ErrExtractionFailed.WithCause(err).WithMessage(msg)
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

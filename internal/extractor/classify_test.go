package extractor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/KeremKalyoncu/vidlink/internal/errors"
	"github.com/KeremKalyoncu/vidlink/internal/types"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		platform types.Platform
		err      string
		want     string
	}{
		{"unavailable", types.PlatformYouTube, "[youtube] abc: Video unavailable", MsgUnavailable},
		{"removed", types.PlatformBilibili, "This video has been removed by the uploader", MsgUnavailable},
		{"age restricted", types.PlatformYouTube, "Sign in to confirm your age. This video may be inappropriate", MsgAgeRestricted},
		{"age restricted explicit", types.PlatformUnknown, "Video is age-restricted", MsgAgeRestricted},
		{"douyin cookies", types.PlatformDouyin, "Fresh cookies (not necessarily logged in) are needed", MsgCookieRequired},
		{"tiktok cookies", types.PlatformTikTok, "Cookies are required", MsgCookieRequired},
		{"cookie text on youtube is generic", types.PlatformYouTube, "use --cookies-from-browser", "Download failed: use --cookies-from-browser"},
		{"generic", types.PlatformTwitter, "Unsupported URL: https://x.com/home", "Download failed: Unsupported URL: https://x.com/home"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyError(tt.platform, errors.New(tt.err))

			assert.Equal(t, tt.want, apperrors.GetErrorMessage(err))
			assert.Equal(t, 500, apperrors.GetStatusCode(err))
			assert.ErrorIs(t, err, apperrors.ErrExtractionFailed)
		})
	}
}

func TestClassifyErrorKeepsCause(t *testing.T) {
	cause := &ExecError{Err: errors.New("exit status 1"), Stderr: "ERROR: [youtube] abc: Video unavailable"}
	err := ClassifyError(types.PlatformYouTube, cause)

	var execErr *ExecError
	assert.ErrorAs(t, err, &execErr)
	assert.Equal(t, MsgUnavailable, apperrors.GetErrorMessage(err))
}

func TestClassifyErrorTimeout(t *testing.T) {
	err := ClassifyError(types.PlatformYouTube, fmt.Errorf("yt-dlp timed out: %w", context.DeadlineExceeded))
	assert.Equal(t, MsgTimeout, apperrors.GetErrorMessage(err))
}

func TestClassifyErrorNil(t *testing.T) {
	assert.NoError(t, ClassifyError(types.PlatformYouTube, nil))
}

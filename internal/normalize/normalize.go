// Package normalize turns raw extractor output into the response payload.
package normalize

import (
	"fmt"

	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// SeparateStreamsNote is attached to every separate-stream payload
const SeparateStreamsNote = "Video and audio are separate streams. Download both and merge using FFmpeg or a video editor."

const (
	defaultTitle  = "Unknown"
	defaultFormat = "mp4"
)

// Normalize selects the stream(s) to hand back for an extraction result.
// Bilibili prefers a muxed mp4, then a separate video/audio pair; other
// platforms prefer the tallest mp4 record's URL over the top-level one.
func Normalize(info *types.ExtractionResult, platform types.Platform) (*types.VideoInfo, error) {
	if info == nil {
		return nil, fmt.Errorf("no extraction result for %s", platform)
	}

	if platform == types.PlatformBilibili {
		return normalizeBilibili(info), nil
	}
	return normalizeStandard(info, platform), nil
}

func normalizeBilibili(info *types.ExtractionResult) *types.VideoInfo {
	if muxed, ok := firstMuxedMP4(info.Formats); ok {
		out := base(info, types.PlatformBilibili)
		out.DownloadType = types.DownloadSingle
		out.DownloadURL = muxed.URL
		out.Format = defaultFormat
		out.Filesize = muxed.Size()
		out.Width = muxed.Width
		out.Height = muxed.Height
		return out
	}

	if out, ok := separate(info, types.PlatformBilibili); ok {
		return out
	}

	return topLevel(info, types.PlatformBilibili)
}

func normalizeStandard(info *types.ExtractionResult, platform types.Platform) *types.VideoInfo {
	// Only the URL is swapped; metadata stays top-level
	if best, ok := tallestMP4(info.Formats); ok && best.URL != "" {
		out := topLevel(info, platform)
		out.DownloadURL = best.URL
		return out
	}

	if info.URL == "" {
		if out, ok := separate(info, platform); ok {
			return out
		}
	}

	return topLevel(info, platform)
}

// base fills the fields shared by every payload shape
func base(info *types.ExtractionResult, platform types.Platform) *types.VideoInfo {
	title := info.Title
	if title == "" {
		title = defaultTitle
	}
	return &types.VideoInfo{
		Success:   true,
		Platform:  platform,
		Title:     title,
		Thumbnail: info.Thumbnail,
		Duration:  info.Duration,
		Format:    defaultFormat,
	}
}

// topLevel is the single-URL payload built from the result itself
func topLevel(info *types.ExtractionResult, platform types.Platform) *types.VideoInfo {
	out := base(info, platform)
	out.DownloadType = types.DownloadSingle
	out.DownloadURL = info.URL
	out.Filesize = info.Size()
	out.Width = info.Width
	out.Height = info.Height
	if info.Ext != "" {
		out.Format = info.Ext
	}
	return out
}

// separate pairs the tallest video-only record with the highest-bitrate
// audio-only record. ok is false unless both exist.
func separate(info *types.ExtractionResult, platform types.Platform) (*types.VideoInfo, bool) {
	video, hasVideo := bestVideoOnly(info.Formats)
	audio, hasAudio := bestAudioOnly(info.Formats)
	if !hasVideo || !hasAudio {
		return nil, false
	}

	out := base(info, platform)
	out.DownloadType = types.DownloadSeparate
	out.VideoURL = video.URL
	out.AudioURL = audio.URL
	out.Filesize = video.Size() + audio.Size()
	out.Width = video.Width
	out.Height = video.Height
	out.Note = SeparateStreamsNote
	return out, true
}

func firstMuxedMP4(formats []types.FormatRecord) (types.FormatRecord, bool) {
	for _, f := range formats {
		if f.Ext == "mp4" && f.HasVideo() && f.HasAudio() {
			return f, true
		}
	}
	return types.FormatRecord{}, false
}

// The max* helpers keep the first record on ties, so they use strict >.

func tallestMP4(formats []types.FormatRecord) (types.FormatRecord, bool) {
	return maxBy(formats, func(f types.FormatRecord) bool { return f.Ext == "mp4" },
		func(f types.FormatRecord) float64 { return float64(f.Height) })
}

func bestVideoOnly(formats []types.FormatRecord) (types.FormatRecord, bool) {
	return maxBy(formats, func(f types.FormatRecord) bool { return f.HasVideo() && !f.HasAudio() },
		func(f types.FormatRecord) float64 { return float64(f.Height) })
}

func bestAudioOnly(formats []types.FormatRecord) (types.FormatRecord, bool) {
	return maxBy(formats, func(f types.FormatRecord) bool { return f.HasAudio() && !f.HasVideo() },
		func(f types.FormatRecord) float64 { return f.AudioBitrate })
}

func maxBy(formats []types.FormatRecord, keep func(types.FormatRecord) bool, score func(types.FormatRecord) float64) (types.FormatRecord, bool) {
	var best types.FormatRecord
	found := false
	for _, f := range formats {
		if !keep(f) {
			continue
		}
		if !found || score(f) > score(best) {
			best = f
			found = true
		}
	}
	return best, found
}

package types

// VideoInfoRequest is the body accepted by the video info endpoint
type VideoInfoRequest struct {
	URL string `json:"url"`
}

// Platform represents supported platforms
type Platform string

const (
	PlatformBilibili Platform = "bilibili"
	PlatformTwitter  Platform = "twitter"
	PlatformTikTok   Platform = "tiktok"
	PlatformDouyin   Platform = "douyin"
	PlatformYouTube  Platform = "youtube"
	PlatformUnknown  Platform = "unknown"
)

// String returns the platform tag
func (p Platform) String() string {
	return string(p)
}

// codecNone is what yt-dlp reports for a missing track
const codecNone = "none"

// FormatRecord is one candidate stream as reported by yt-dlp
type FormatRecord struct {
	FormatID       string  `json:"format_id,omitempty"`
	Ext            string  `json:"ext"`
	VideoCodec     string  `json:"vcodec,omitempty"`
	AudioCodec     string  `json:"acodec,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	AudioBitrate   float64 `json:"abr,omitempty"`
	Filesize       int64   `json:"filesize,omitempty"`
	FilesizeApprox float64 `json:"filesize_approx,omitempty"`
	URL            string  `json:"url"`
}

// HasVideo reports whether the record carries a video track.
// yt-dlp leaves vcodec unset when it cannot tell, so only "none" counts as absent.
func (f FormatRecord) HasVideo() bool {
	return f.VideoCodec != codecNone
}

// HasAudio reports whether the record carries an audio track
func (f FormatRecord) HasAudio() bool {
	return f.AudioCodec != codecNone
}

// Size returns the exact size, falling back to the approximate one
func (f FormatRecord) Size() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return int64(f.FilesizeApprox)
}

// ExtractionResult is the raw output of a single yt-dlp call
type ExtractionResult struct {
	Title          string         `json:"title"`
	Thumbnail      string         `json:"thumbnail"`
	Duration       float64        `json:"duration"`
	Ext            string         `json:"ext"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	Filesize       int64          `json:"filesize"`
	FilesizeApprox float64        `json:"filesize_approx"`
	URL            string         `json:"url"`
	Extractor      string         `json:"extractor,omitempty"`
	Formats        []FormatRecord `json:"formats"`
}

// Size returns the exact size, falling back to the approximate one
func (r ExtractionResult) Size() int64 {
	if r.Filesize > 0 {
		return r.Filesize
	}
	return int64(r.FilesizeApprox)
}

// DownloadType tags the shape of a VideoInfo payload
type DownloadType string

const (
	DownloadSingle   DownloadType = "single"
	DownloadSeparate DownloadType = "separate"
)

// VideoInfo is the normalized response payload.
// DownloadURL is set for single downloads; VideoURL, AudioURL and Note only for separate ones.
type VideoInfo struct {
	Success      bool         `json:"success"`
	Platform     Platform     `json:"platform"`
	Title        string       `json:"title"`
	Thumbnail    string       `json:"thumbnail"`
	Duration     float64      `json:"duration"` // seconds
	Filesize     int64        `json:"filesize"`
	Format       string       `json:"format"`
	DownloadType DownloadType `json:"download_type"`
	DownloadURL  string       `json:"download_url,omitempty"`
	VideoURL     string       `json:"video_url,omitempty"`
	AudioURL     string       `json:"audio_url,omitempty"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	Note         string       `json:"note,omitempty"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

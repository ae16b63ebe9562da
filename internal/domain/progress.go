package domain

// Phase represents the coarse stage of the external download pipeline
type Phase string

const (
	PhaseDownloading Phase = "downloading" // yt-dlp is transferring media
	PhaseConverting  Phase = "converting"  // ffmpeg is merging/remuxing/extracting
	PhaseFinalizing  Phase = "finalizing"  // metadata embedding, cleanup
)

// ProgressEvent is a normalized progress update parsed from one line of
// downloader output. Percent is nil when the current phase reports no
// percentage (time-range clips report an absolute media timestamp instead;
// the raw timestamp stays in RawLine).
type ProgressEvent struct {
	Phase   Phase    `json:"phase"`
	Percent *float64 `json:"percent,omitempty"`
	Speed   string   `json:"speed,omitempty"`
	ETA     string   `json:"eta,omitempty"`
	RawLine string   `json:"raw_line,omitempty"`
}

// HasPercent reports whether the event carries a percentage
func (e *ProgressEvent) HasPercent() bool {
	return e.Percent != nil
}

// ProgressCallback receives progress events in line-emission order
type ProgressCallback func(ProgressEvent)

package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// OutputFormat is the requested container for the finished file
type OutputFormat string

const (
	FormatMP4  OutputFormat = "mp4"
	FormatWebM OutputFormat = "webm"
	FormatMKV  OutputFormat = "mkv"
	FormatMP3  OutputFormat = "mp3"
	FormatM4A  OutputFormat = "m4a"
)

// IsAudio reports whether the format is audio-only
func (f OutputFormat) IsAudio() bool {
	return f == FormatMP3 || f == FormatM4A
}

// ValidateFormat checks if an output format is supported
func ValidateFormat(f OutputFormat) bool {
	switch f {
	case FormatMP4, FormatWebM, FormatMKV, FormatMP3, FormatM4A:
		return true
	}
	return false
}

// VideoQuality is "best" or a height cap like "720p"
type VideoQuality string

// QualityBest selects the highest available quality
const QualityBest = "best"

var heightPattern = regexp.MustCompile(`^(\d{3,4})p$`)

// Height returns the height cap, or 0 when the quality is "best"
func (q VideoQuality) Height() int {
	m := heightPattern.FindStringSubmatch(string(q))
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	return h
}

// ValidateVideoQuality checks if a video quality selector is well-formed
func ValidateVideoQuality(q VideoQuality) bool {
	return q == QualityBest || heightPattern.MatchString(string(q))
}

// AudioQuality is "best" or a bitrate like "192k"
type AudioQuality string

// audioQualityMap maps bitrate selectors to yt-dlp --audio-quality values
var audioQualityMap = map[AudioQuality]string{
	QualityBest: "0",
	"256k":      "2",
	"192k":      "5",
	"128k":      "7",
	"64k":       "9",
}

// SelectorValue returns the yt-dlp --audio-quality value for this quality
func (q AudioQuality) SelectorValue() string {
	if v, ok := audioQualityMap[q]; ok {
		return v
	}
	return "0"
}

// ValidateAudioQuality checks if an audio quality selector is supported
func ValidateAudioQuality(q AudioQuality) bool {
	_, ok := audioQualityMap[q]
	return ok
}

// supported URL patterns; the progress pipeline itself is source-agnostic,
// validation only guards against obviously unusable input
var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/playlist\?list=[\w-]+`),
	regexp.MustCompile(`(?i)^(?:https?://)?youtu\.be/[\w-]+`),
	regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/shorts/[\w-]+`),
	regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/live/[\w-]+`),
	regexp.MustCompile(`(?i)^(?:https?://)?(?:m\.)?youtube\.com/watch\?v=[\w-]+`),
}

// ValidateURL checks a URL against the supported patterns
func ValidateURL(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	for _, pattern := range urlPatterns {
		if pattern.MatchString(url) {
			return true
		}
	}
	return false
}

// reservedFilenameChars are rejected in custom filename templates
const reservedFilenameChars = `<>:"/\|?*`

// SanitizeFilename strips reserved characters and normalizes whitespace.
// Callers that want a hard rejection instead should validate first; resolve
// rejects rather than silently rewriting user input.
func SanitizeFilename(name string) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(reservedFilenameChars, r) {
			return -1
		}
		return r
	}, name)

	replacer := strings.NewReplacer("–", "-", "—", "-", "…", "...")
	clean = replacer.Replace(clean)
	clean = strings.Join(strings.Fields(clean), " ")

	if clean == "" {
		clean = "video"
	}
	if len(clean) > 200 {
		clean = strings.TrimSpace(clean[:200])
	}
	return clean
}

// Options is the raw user input consumed by ResolveSettings. Either Preset
// names a bundled preset, or the Format/*Quality fields are read directly.
type Options struct {
	URL              string `json:"url"`
	Preset           string `json:"preset,omitempty"`
	Format           string `json:"format,omitempty"`
	VideoQuality     string `json:"video_quality,omitempty"`
	AudioQuality     string `json:"audio_quality,omitempty"`
	DestinationDir   string `json:"destination_dir,omitempty"`
	FilenameTemplate string `json:"filename,omitempty"`
	StartTime        string `json:"start_time,omitempty"`
	EndTime          string `json:"end_time,omitempty"`
	WantSubtitles    bool   `json:"subtitles,omitempty"`
	WantMetadata     bool   `json:"metadata,omitempty"`
}

// DownloadSettings is the canonical, validated record a download runs from.
// It is never mutated after resolution; every download starts from a freshly
// resolved record.
type DownloadSettings struct {
	URL              string       `json:"url"`
	OutputFormat     OutputFormat `json:"output_format"`
	VideoQuality     VideoQuality `json:"video_quality"`
	AudioQuality     AudioQuality `json:"audio_quality"`
	DestinationDir   string       `json:"destination_dir"`
	FilenameTemplate string       `json:"filename,omitempty"`
	TimeRange        *TimeRange   `json:"time_range,omitempty"`
	WantSubtitles    bool         `json:"subtitles"`
	WantMetadata     bool         `json:"metadata"`
}

// ResolveSettings turns user options into a validated DownloadSettings.
// All violations are collected and returned together in one ValidationError.
func ResolveSettings(opts Options) (DownloadSettings, error) {
	verr := &ValidationError{}

	settings := DownloadSettings{
		URL:            strings.TrimSpace(opts.URL),
		OutputFormat:   FormatMP4,
		VideoQuality:   QualityBest,
		AudioQuality:   QualityBest,
		DestinationDir: opts.DestinationDir,
		WantSubtitles:  opts.WantSubtitles,
		WantMetadata:   opts.WantMetadata,
	}

	if settings.URL == "" {
		verr.Add("url must not be empty")
	} else if !ValidateURL(settings.URL) {
		verr.Add("url %q is not a supported video URL", settings.URL)
	}

	if opts.Preset != "" {
		preset, ok := LookupPreset(opts.Preset)
		if !ok {
			verr.Add("unknown preset %q", opts.Preset)
		} else {
			settings.OutputFormat = preset.Format
			settings.VideoQuality = preset.VideoQuality
			settings.AudioQuality = preset.AudioQuality
		}
	} else {
		if opts.Format != "" {
			settings.OutputFormat = OutputFormat(strings.ToLower(opts.Format))
			if !ValidateFormat(settings.OutputFormat) {
				verr.Add("unsupported output format %q", opts.Format)
			}
		}
		if opts.VideoQuality != "" {
			settings.VideoQuality = VideoQuality(strings.ToLower(opts.VideoQuality))
			if !ValidateVideoQuality(settings.VideoQuality) {
				verr.Add("invalid video quality %q: use %q or a height like 720p", opts.VideoQuality, QualityBest)
			}
		}
		if opts.AudioQuality != "" {
			settings.AudioQuality = AudioQuality(strings.ToLower(opts.AudioQuality))
			if !ValidateAudioQuality(settings.AudioQuality) {
				verr.Add("invalid audio quality %q", opts.AudioQuality)
			}
		}
	}

	if opts.FilenameTemplate != "" {
		if strings.ContainsAny(opts.FilenameTemplate, reservedFilenameChars) {
			verr.Add("filename %q contains reserved characters (%s)", opts.FilenameTemplate, reservedFilenameChars)
		} else {
			settings.FilenameTemplate = SanitizeFilename(opts.FilenameTemplate)
		}
	}

	settings.TimeRange = resolveTimeRange(opts.StartTime, opts.EndTime, verr)

	if verr.HasViolations() {
		return DownloadSettings{}, verr
	}
	return settings, nil
}

func resolveTimeRange(startTime, endTime string, verr *ValidationError) *TimeRange {
	start, end := -1, -1

	if s := strings.TrimSpace(startTime); s != "" && s != "00:00:00" {
		v, err := ParseClock(s)
		if err != nil {
			verr.Add("invalid start time: %v", err)
		} else {
			start = v
		}
	}
	if s := strings.TrimSpace(endTime); s != "" {
		v, err := ParseClock(s)
		if err != nil {
			verr.Add("invalid end time: %v", err)
		} else {
			end = v
		}
	}

	if start >= 0 && end >= 0 && end <= start {
		verr.Add("end time must be after start time")
		return nil
	}
	if start < 0 && end < 0 {
		return nil
	}
	return &TimeRange{Start: start, End: end}
}

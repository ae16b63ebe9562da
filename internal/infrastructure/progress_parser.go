package infrastructure

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/downlyapp/downly/internal/domain"
)

// Line shapes recognized in yt-dlp's human-readable progress output. This is
// a de facto format, not a stable contract: anything unrecognized degrades to
// "no event" and is logged for diagnostics, never escalated.
var (
	// [download]  42.0% of 10.00MiB at 1.2MiB/s ETA 00:05
	downloadLinePattern = regexp.MustCompile(`^\[download\]\s+(\d+(?:\.\d+)?)%(?:\s+of\s+~?\S+)?(?:\s+at\s+(\S+))?(?:\s+ETA\s+(\S+))?`)

	// ffmpeg status lines: frame=  120 fps=30 ... time=00:00:30.00 ...
	ffmpegLinePattern = regexp.MustCompile(`^(?:frame=|size=).*\btime=\d`)
)

// converting markers cover merge/remux/transcode steps; finalizing markers
// cover post-download housekeeping
var (
	convertingMarkers = []string{"[Merger]", "[ExtractAudio]", "[VideoRemuxer]", "[VideoConvertor]", "[Fixup"}
	finalizingMarkers = []string{"[Metadata]", "[EmbedThumbnail]", "[EmbedSubtitle]", "Deleting original file"}
	ignoredMarkers    = []string{"Destination:", "has already been downloaded", "Resuming download"}
)

// ProgressParser turns downloader output lines into normalized progress
// events. It is stateless across calls except for the last-seen phase, which
// disambiguates continuation lines that omit an explicit phase marker.
type ProgressParser struct {
	lastPhase domain.Phase
	logger    *zap.Logger
}

// NewProgressParser creates a parser; logger may be nil
func NewProgressParser(logger *zap.Logger) *ProgressParser {
	return &ProgressParser{logger: logger}
}

// ParseLine consumes one line and returns a normalized event, or nil when
// the line carries no progress information. Never returns an error: the
// upstream format can drift between tool versions and must not crash the
// pipeline.
func (p *ProgressParser) ParseLine(line string) *domain.ProgressEvent {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	for _, marker := range ignoredMarkers {
		if strings.Contains(line, marker) {
			return nil
		}
	}

	if m := downloadLinePattern.FindStringSubmatch(line); m != nil {
		percent, err := strconv.ParseFloat(m[1], 64)
		if err != nil || percent < 0 || percent > 100 {
			p.logUnrecognized(line)
			return nil
		}
		p.lastPhase = domain.PhaseDownloading
		return &domain.ProgressEvent{
			Phase:   domain.PhaseDownloading,
			Percent: &percent,
			Speed:   m[2],
			ETA:     m[3],
			RawLine: line,
		}
	}

	for _, marker := range convertingMarkers {
		if strings.Contains(line, marker) {
			p.lastPhase = domain.PhaseConverting
			return &domain.ProgressEvent{Phase: domain.PhaseConverting, RawLine: line}
		}
	}

	// Time-range clips surface conversion progress as ffmpeg timestamps, not
	// percentages. The timestamp is preserved in RawLine; no percent is ever
	// fabricated from it.
	if ffmpegLinePattern.MatchString(line) {
		p.lastPhase = domain.PhaseConverting
		return &domain.ProgressEvent{Phase: domain.PhaseConverting, RawLine: line}
	}

	for _, marker := range finalizingMarkers {
		if strings.Contains(line, marker) {
			p.lastPhase = domain.PhaseFinalizing
			return &domain.ProgressEvent{Phase: domain.PhaseFinalizing, RawLine: line}
		}
	}

	p.logUnrecognized(line)
	return nil
}

// LastPhase returns the most recently recognized phase
func (p *ProgressParser) LastPhase() domain.Phase {
	return p.lastPhase
}

func (p *ProgressParser) logUnrecognized(line string) {
	if p.logger != nil {
		p.logger.Debug("Unrecognized downloader output", zap.String("line", line))
	}
}

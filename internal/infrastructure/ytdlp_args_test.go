package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/downlyapp/downly/internal/domain"
)

var testTools = domain.ToolPaths{
	Downloader: "/usr/local/bin/yt-dlp",
	Processor:  "/usr/local/bin/ffmpeg",
}

func baseSettings() domain.DownloadSettings {
	return domain.DownloadSettings{
		URL:            "https://youtu.be/dQw4w9WgXcQ",
		OutputFormat:   domain.FormatMP4,
		VideoQuality:   domain.QualityBest,
		AudioQuality:   domain.QualityBest,
		DestinationDir: "/tmp/downloads",
	}
}

// indexOf returns the position of value in args, or -1
func indexOf(args []string, value string) int {
	for i, a := range args {
		if a == value {
			return i
		}
	}
	return -1
}

// flagValue returns the argument following flag, or ""
func flagValue(args []string, flag string) string {
	i := indexOf(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func TestBuildArgs_Deterministic(t *testing.T) {
	settings := baseSettings()
	first := BuildArgs(settings, testTools)
	second := BuildArgs(settings, testTools)
	assert.Equal(t, first, second)
}

func TestBuildArgs_BaseFlags(t *testing.T) {
	args := BuildArgs(baseSettings(), testTools)

	assert.Equal(t, "/tmp/downloads", flagValue(args, "-P"))
	assert.Equal(t, "/usr/local/bin/ffmpeg", flagValue(args, "--ffmpeg-location"))
	assert.Contains(t, args, "--progress")
	assert.Contains(t, args, "--newline")
	assert.Contains(t, args, "--no-part")
	assert.Contains(t, args, "--no-overwrites")
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", args[len(args)-1])
}

func TestBuildArgs_MP4Video(t *testing.T) {
	args := BuildArgs(baseSettings(), testTools)

	assert.Equal(t, "mp4", flagValue(args, "--merge-output-format"))
	assert.Equal(t, "mp4", flagValue(args, "--remux-video"))
	assert.Contains(t, flagValue(args, "-f"), "ext=mp4")
	assert.NotContains(t, args, "--extract-audio")
	assert.NotContains(t, args, "--download-sections")
}

func TestBuildArgs_HeightCap(t *testing.T) {
	settings := baseSettings()
	settings.VideoQuality = "720p"

	args := BuildArgs(settings, testTools)
	assert.Contains(t, flagValue(args, "-f"), "height<=720")
}

func TestBuildArgs_WebMAndMKV(t *testing.T) {
	settings := baseSettings()
	settings.OutputFormat = domain.FormatWebM
	args := BuildArgs(settings, testTools)
	assert.Equal(t, "webm", flagValue(args, "--merge-output-format"))
	assert.NotContains(t, args, "--remux-video")

	settings.OutputFormat = domain.FormatMKV
	args = BuildArgs(settings, testTools)
	assert.Equal(t, "mkv", flagValue(args, "--merge-output-format"))
}

func TestBuildArgs_AudioExtraction(t *testing.T) {
	settings := baseSettings()
	settings.OutputFormat = domain.FormatMP3
	settings.AudioQuality = "192k"

	args := BuildArgs(settings, testTools)

	assert.Contains(t, args, "--extract-audio")
	assert.Equal(t, "mp3", flagValue(args, "--audio-format"))
	assert.Equal(t, "5", flagValue(args, "--audio-quality"))
	assert.Equal(t, "bestaudio/best", flagValue(args, "-f"))
}

func TestBuildArgs_BestAudioQualityOmitsFlag(t *testing.T) {
	settings := baseSettings()
	settings.OutputFormat = domain.FormatM4A

	args := BuildArgs(settings, testTools)
	assert.Contains(t, args, "--extract-audio")
	assert.NotContains(t, args, "--audio-quality")
}

func TestBuildArgs_TimeRangeAudio(t *testing.T) {
	settings := baseSettings()
	settings.OutputFormat = domain.FormatMP3
	settings.TimeRange = &domain.TimeRange{Start: 30, End: 90}

	args := BuildArgs(settings, testTools)

	assert.Equal(t, "*00:00:30-00:01:30", flagValue(args, "--download-sections"))
	assert.Contains(t, args, "--extract-audio")
	// clipped audio prefers m4a/AAC sources so the cut stays sample-accurate
	assert.Contains(t, flagValue(args, "-f"), "bestaudio[ext=m4a]")
}

func TestBuildArgs_TimeRangeVideoForcedMP4(t *testing.T) {
	settings := baseSettings()
	settings.OutputFormat = domain.FormatMP4
	settings.VideoQuality = "480p"
	settings.TimeRange = &domain.TimeRange{Start: 60, End: -1}

	args := BuildArgs(settings, testTools)

	assert.Equal(t, "*00:01:00-inf", flagValue(args, "--download-sections"))
	assert.Equal(t, "mp4", flagValue(args, "--merge-output-format"))
	assert.Contains(t, flagValue(args, "-f"), "height<=480")
	assert.Contains(t, flagValue(args, "--postprocessor-args"), "aac")
}

func TestBuildArgs_CustomFilename(t *testing.T) {
	settings := baseSettings()
	settings.FilenameTemplate = "my clip"

	args := BuildArgs(settings, testTools)

	assert.Equal(t, "my clip.%(ext)s", flagValue(args, "-o"))
	assert.NotContains(t, args, "--restrict-filenames")
}

func TestBuildArgs_DefaultFilenameTemplate(t *testing.T) {
	args := BuildArgs(baseSettings(), testTools)

	assert.Equal(t, "%(title)s.%(ext)s", flagValue(args, "-o"))
	assert.Contains(t, args, "--restrict-filenames")
}

func TestBuildArgs_MetadataAndSubtitles(t *testing.T) {
	settings := baseSettings()
	settings.WantMetadata = true
	settings.WantSubtitles = true

	args := BuildArgs(settings, testTools)

	assert.Contains(t, args, "--embed-metadata")
	assert.Contains(t, args, "--write-thumbnail")
	assert.Contains(t, args, "--embed-subs")
	assert.Contains(t, args, "--write-auto-subs")
}

func TestBuildArgs_URLIsLast(t *testing.T) {
	settings := baseSettings()
	settings.TimeRange = &domain.TimeRange{Start: 0, End: 45}
	settings.WantMetadata = true

	args := BuildArgs(settings, testTools)
	require.NotEmpty(t, args)
	assert.Equal(t, settings.URL, args[len(args)-1])
}

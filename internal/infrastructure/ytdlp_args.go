package infrastructure

import (
	"github.com/downlyapp/downly/internal/domain"
)

// Network and reliability flags passed to every invocation
const (
	downloadRetries     = "3"
	fragmentRetries     = "3"
	retrySleep          = "2"
	socketTimeout       = "30"
	concurrentFragments = "4"
)

// BuildArgs maps validated settings to the yt-dlp argument vector. Pure and
// deterministic: identical settings and tool paths always yield an identical
// vector. Arguments are passed to the process as a vector, never through a
// shell.
func BuildArgs(settings domain.DownloadSettings, tools domain.ToolPaths) []string {
	args := []string{
		"-P", settings.DestinationDir,
		"--ffmpeg-location", tools.Processor,
		"--progress",
		"--newline",
		"--no-part",
		"--no-overwrites",
		"--retries", downloadRetries,
		"--fragment-retries", fragmentRetries,
		"--retry-sleep", retrySleep,
		"--socket-timeout", socketTimeout,
		"--no-warnings",
		"--concurrent-fragments", concurrentFragments,
	}

	if settings.WantMetadata {
		args = append(args,
			"--write-info-json",
			"--write-description",
			"--write-thumbnail",
			"--embed-metadata",
		)
	}

	if settings.WantSubtitles {
		args = append(args,
			"--write-subs",
			"--write-auto-subs",
			"--embed-subs",
		)
	}

	args = appendFormatArgs(args, settings)

	if settings.FilenameTemplate != "" {
		args = append(args, "-o", settings.FilenameTemplate+".%(ext)s")
	} else {
		args = append(args, "-o", "%(title)s.%(ext)s", "--restrict-filenames")
	}

	return append(args, settings.URL)
}

func appendFormatArgs(args []string, settings domain.DownloadSettings) []string {
	isAudio := settings.OutputFormat.IsAudio()

	if settings.TimeRange != nil {
		if isAudio {
			// m4a/AAC sources trim cleanly; opus needs a full transcode pass
			args = append(args,
				"-f", "bestaudio[ext=m4a]/bestaudio[acodec^=mp4a]/bestaudio/best",
				"--extract-audio", "--audio-format", string(settings.OutputFormat),
			)
			args = appendAudioQuality(args, settings.AudioQuality)
		} else {
			// time-sectioned video is forced to mp4 so the clip remuxes
			// without codec surprises
			args = append(args,
				"-f", timeSectionFormatSelector(settings.VideoQuality),
				"--merge-output-format", "mp4",
				"--remux-video", "mp4",
				"--postprocessor-args", "ffmpeg:-c:a aac -b:a 192k",
			)
			args = appendAudioQuality(args, settings.AudioQuality)
		}
		return append(args, "--download-sections", settings.TimeRange.Section())
	}

	if isAudio {
		args = append(args,
			"-f", "bestaudio/best",
			"--extract-audio", "--audio-format", string(settings.OutputFormat),
		)
		return appendAudioQuality(args, settings.AudioQuality)
	}

	args = append(args, "-f", videoFormatSelector(settings.OutputFormat, settings.VideoQuality))
	switch settings.OutputFormat {
	case domain.FormatMP4:
		args = append(args,
			"--merge-output-format", "mp4",
			"--remux-video", "mp4",
			"--postprocessor-args", "ffmpeg:-c:a aac -b:a 192k",
		)
	case domain.FormatWebM:
		args = append(args, "--merge-output-format", "webm")
	case domain.FormatMKV:
		args = append(args, "--merge-output-format", "mkv")
	}
	return appendAudioQuality(args, settings.AudioQuality)
}

func appendAudioQuality(args []string, quality domain.AudioQuality) []string {
	if quality == domain.QualityBest {
		return args
	}
	return append(args, "--audio-quality", quality.SelectorValue())
}

// videoFormatSelector builds the -f selector string for full downloads
func videoFormatSelector(format domain.OutputFormat, quality domain.VideoQuality) string {
	if quality == domain.QualityBest {
		if format == domain.FormatMP4 {
			return "bestvideo*[ext=mp4]+bestaudio[ext=m4a]/bestvideo*+bestaudio[ext=m4a]/bestvideo*+bestaudio/best"
		}
		return "bestvideo*+bestaudio/best"
	}

	h := string(quality[:len(quality)-1]) // strip trailing "p"
	if format == domain.FormatMP4 {
		return "bestvideo[height<=" + h + "][ext=mp4]+bestaudio[ext=m4a]/bestvideo[height<=" + h + "]+bestaudio[ext=m4a]/bestvideo[height<=" + h + "]+bestaudio/best[height<=" + h + "]"
	}
	return "bestvideo[height<=" + h + "]+bestaudio/best[height<=" + h + "]"
}

// timeSectionFormatSelector builds the -f selector for clipped video
// downloads, always mp4-biased
func timeSectionFormatSelector(quality domain.VideoQuality) string {
	if quality == domain.QualityBest {
		return "bestvideo*[ext=mp4]+bestaudio[ext=m4a]/bestvideo*+bestaudio[ext=m4a]/bestvideo*+bestaudio/best"
	}
	h := string(quality[:len(quality)-1])
	return "bestvideo[height<=" + h + "][ext=mp4]+bestaudio[ext=m4a]/bestvideo[height<=" + h + "]+bestaudio[ext=m4a]/bestvideo[height<=" + h + "]+bestaudio/best[height<=" + h + "]"
}

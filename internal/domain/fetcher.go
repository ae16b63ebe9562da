package domain

import "context"

// ToolPaths holds the resolved absolute paths of the external executables
type ToolPaths struct {
	Downloader string // yt-dlp
	Processor  string // ffmpeg
}

// ToolResolver locates the bundled external tools. Resolution differs when
// running from source versus from a packaged bundle; either lookup may fail
// with a DependencyNotFoundError that the orchestrator surfaces before any
// process is spawned.
type ToolResolver interface {
	DownloaderPath() (string, error)
	ProcessorPath() (string, error)
}

// MediaFetcher runs one download to a terminal result, reporting progress
// through onEvent. The external executable lives behind this interface so
// tests can substitute a fake emitting scripted lines.
type MediaFetcher interface {
	Fetch(ctx context.Context, settings DownloadSettings, tools ToolPaths, onEvent ProgressCallback) TerminalResult
}

// LineParser consumes one line of external-process output and yields a
// normalized event, or nil when the line carries no progress information.
// Implementations must never fail on unrecognized input.
type LineParser interface {
	ParseLine(line string) *ProgressEvent
}

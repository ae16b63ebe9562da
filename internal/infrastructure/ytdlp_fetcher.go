package infrastructure

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/downlyapp/downly/internal/domain"
)

// YTDLPFetcher implements domain.MediaFetcher by running yt-dlp under the
// process supervisor
type YTDLPFetcher struct {
	supervisor *ProcessSupervisor
	logger     *zap.Logger
}

// NewYTDLPFetcher creates a fetcher backed by the given supervisor
func NewYTDLPFetcher(supervisor *ProcessSupervisor, logger *zap.Logger) *YTDLPFetcher {
	return &YTDLPFetcher{
		supervisor: supervisor,
		logger:     logger,
	}
}

// Fetch runs one download to a terminal result
func (f *YTDLPFetcher) Fetch(ctx context.Context, settings domain.DownloadSettings, tools domain.ToolPaths, onEvent domain.ProgressCallback) domain.TerminalResult {
	if err := os.MkdirAll(settings.DestinationDir, 0755); err != nil {
		return domain.Failed(-1, "", fmt.Errorf("failed to create destination directory: %w", err))
	}

	args := BuildArgs(settings, tools)

	if f.logger != nil {
		// exec.Command passes args directly to the process; escaping is for
		// log readability only
		f.logger.Info("Running downloader",
			zap.String("url", settings.URL),
			zap.String("command", ShellEscapeCommand(tools.Downloader, args...)))
	}

	return f.supervisor.Run(ctx, tools.Downloader, args, onEvent)
}

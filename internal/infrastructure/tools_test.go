package infrastructure

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/downlyapp/downly/internal/domain"
)

// writeFakeTool drops an executable placeholder into dir
func writeFakeTool(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name+executableSuffix())
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
	return path
}

func TestResolver_ConfiguredPathWins(t *testing.T) {
	dir := t.TempDir()
	ytdlp := writeFakeTool(t, dir, "yt-dlp")

	resolver := NewExecToolResolver(&domain.ToolsConfig{Downloader: ytdlp})

	path, err := resolver.DownloaderPath()
	require.NoError(t, err)
	assert.Equal(t, ytdlp, path)
}

func TestResolver_ConfiguredPathMissing(t *testing.T) {
	resolver := NewExecToolResolver(&domain.ToolsConfig{
		Downloader: "/nonexistent/yt-dlp",
	})

	_, err := resolver.DownloaderPath()
	require.Error(t, err)

	var depErr *domain.DependencyNotFoundError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, "yt-dlp", depErr.Tool)
}

func TestResolver_BundleDir(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeFakeTool(t, dir, "ffmpeg")

	resolver := NewExecToolResolver(&domain.ToolsConfig{BundleDir: dir})

	path, err := resolver.ProcessorPath()
	require.NoError(t, err)
	assert.Equal(t, ffmpeg, path)
}

func TestResolver_CachesResolution(t *testing.T) {
	dir := t.TempDir()
	ytdlp := writeFakeTool(t, dir, "yt-dlp")

	resolver := NewExecToolResolver(&domain.ToolsConfig{Downloader: ytdlp})

	first, err := resolver.DownloaderPath()
	require.NoError(t, err)

	// Remove the file; the cached path must still be returned
	require.NoError(t, os.Remove(ytdlp))
	second, err := resolver.DownloaderPath()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// After clearing the cache resolution fails again
	resolver.ClearCache()
	_, err = resolver.DownloaderPath()
	assert.Error(t, err)
}

func TestResolver_DirectoryIsNotATool(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "yt-dlp"), 0755))

	resolver := NewExecToolResolver(&domain.ToolsConfig{
		Downloader: filepath.Join(dir, "yt-dlp"),
	})

	_, err := resolver.DownloaderPath()
	assert.Error(t, err)
}

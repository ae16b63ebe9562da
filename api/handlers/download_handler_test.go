package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/downlyapp/downly/api"
	"github.com/downlyapp/downly/api/handlers"
	"github.com/downlyapp/downly/internal/app"
	"github.com/downlyapp/downly/internal/domain"
	"github.com/downlyapp/downly/internal/infrastructure"
)

// stubFetcher completes instantly with a scripted result
type stubFetcher struct {
	result domain.TerminalResult
	block  chan struct{} // when non-nil, Fetch waits here or on ctx
}

func (f *stubFetcher) Fetch(ctx context.Context, settings domain.DownloadSettings, tools domain.ToolPaths, onEvent domain.ProgressCallback) domain.TerminalResult {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return domain.Cancelled()
		}
	}
	return f.result
}

type stubResolver struct {
	err error
}

func (r *stubResolver) DownloaderPath() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "/stub/yt-dlp", nil
}

func (r *stubResolver) ProcessorPath() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "/stub/ffmpeg", nil
}

func setupTestServer(t *testing.T, fetcher domain.MediaFetcher, resolver domain.ToolResolver) (*httptest.Server, domain.JobRepository) {
	t.Helper()

	repo, err := infrastructure.NewSQLiteJobRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	log := zap.NewNop()
	orchestrator := app.NewOrchestrator(fetcher, resolver, repo, nil, log)
	hub := handlers.NewProgressHub(log)
	router := api.SetupRouter(orchestrator, repo, hub, t.TempDir(), log)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, repo
}

func postDownload(t *testing.T, server *httptest.Server, payload map[string]interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/v1/downloads", "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	return resp
}

func TestStartDownload_Created(t *testing.T) {
	server, repo := setupTestServer(t, &stubFetcher{result: domain.Completed()}, &stubResolver{})

	resp := postDownload(t, server, map[string]interface{}{
		"url":    "https://youtu.be/dQw4w9WgXcQ",
		"preset": "audio-standard",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var job domain.Job
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, domain.FormatMP3, job.Format)

	// The job reaches a terminal state in the history store
	require.Eventually(t, func() bool {
		stored, err := repo.FindByID(job.ID)
		return err == nil && stored.IsTerminal()
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStartDownload_ValidationViolations(t *testing.T) {
	server, _ := setupTestServer(t, &stubFetcher{result: domain.Completed()}, &stubResolver{})

	resp := postDownload(t, server, map[string]interface{}{
		"url":    "not a url",
		"format": "avi",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error      string   `json:"error"`
		Violations []string `json:"violations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Violations, 2)
}

func TestStartDownload_ConflictWhileRunning(t *testing.T) {
	block := make(chan struct{})
	server, _ := setupTestServer(t, &stubFetcher{result: domain.Completed(), block: block}, &stubResolver{})
	defer close(block)

	first := postDownload(t, server, map[string]interface{}{"url": "https://youtu.be/dQw4w9WgXcQ"})
	first.Body.Close()
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := postDownload(t, server, map[string]interface{}{"url": "https://youtu.be/dQw4w9WgXcQ"})
	defer second.Body.Close()
	assert.Equal(t, http.StatusConflict, second.StatusCode)
}

func TestStartDownload_MissingDependency(t *testing.T) {
	resolver := &stubResolver{err: &domain.DependencyNotFoundError{Tool: "ffmpeg"}}
	server, _ := setupTestServer(t, &stubFetcher{result: domain.Completed()}, resolver)

	resp := postDownload(t, server, map[string]interface{}{"url": "https://youtu.be/dQw4w9WgXcQ"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body struct {
		Tool string `json:"tool"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ffmpeg", body.Tool)
}

func TestCurrentDownload_Idle(t *testing.T) {
	server, _ := setupTestServer(t, &stubFetcher{result: domain.Completed()}, &stubResolver{})

	resp, err := http.Get(server.URL + "/api/v1/downloads/current")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Running bool `json:"running"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Running)
}

func TestCancelDownload_TerminalJobIsNoop(t *testing.T) {
	server, _ := setupTestServer(t, &stubFetcher{result: domain.Completed()}, &stubResolver{})

	resp, err := http.Post(server.URL+"/api/v1/downloads/long-gone-id/cancel", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetJob_NotFound(t *testing.T) {
	server, _ := setupTestServer(t, &stubFetcher{result: domain.Completed()}, &stubResolver{})

	resp, err := http.Get(server.URL + "/api/v1/downloads/no-such-id")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListPresets(t *testing.T) {
	server, _ := setupTestServer(t, &stubFetcher{result: domain.Completed()}, &stubResolver{})

	resp, err := http.Get(server.URL + "/api/v1/presets")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var presets []domain.Preset
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&presets))
	assert.Len(t, presets, 6)
}

func TestHealth(t *testing.T) {
	server, _ := setupTestServer(t, &stubFetcher{result: domain.Completed()}, &stubResolver{})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status      string `json:"status"`
		Downloading bool   `json:"downloading"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.Downloading)
}

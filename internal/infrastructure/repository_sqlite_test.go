package infrastructure

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/downlyapp/downly/internal/domain"
)

func setupTestRepo(t *testing.T) *SQLiteJobRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewSQLiteJobRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestJob(url string) *domain.Job {
	return domain.NewJob(domain.DownloadSettings{
		URL:            url,
		OutputFormat:   domain.FormatMP4,
		VideoQuality:   domain.QualityBest,
		AudioQuality:   domain.QualityBest,
		DestinationDir: "/tmp/downloads",
	})
}

func TestRepository_CreateAndFindByID(t *testing.T) {
	repo := setupTestRepo(t)

	job := newTestJob("https://youtu.be/abc123")
	require.NoError(t, repo.Create(job))

	found, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, found.ID)
	assert.Equal(t, job.URL, found.URL)
	assert.Equal(t, domain.StatusRunning, found.Status)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.FindByID("no-such-id")
	assert.Error(t, err)
}

func TestRepository_UpdatePersistsTerminalState(t *testing.T) {
	repo := setupTestRepo(t)

	job := newTestJob("https://youtu.be/abc123")
	require.NoError(t, repo.Create(job))

	job.ApplyResult(domain.Failed(1, "ERROR: video unavailable", errors.New("exit status 1")))
	require.NoError(t, repo.Update(job))

	found, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, found.Status)
	assert.Equal(t, 1, found.ExitCode)
	assert.Equal(t, "exit status 1", found.ErrorMessage)
	require.NotNil(t, found.CompletedAt)
}

func TestRepository_FindRecentOrdersNewestFirst(t *testing.T) {
	repo := setupTestRepo(t)

	older := newTestJob("https://youtu.be/older")
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(older))

	newer := newTestJob("https://youtu.be/newer")
	require.NoError(t, repo.Create(newer))

	jobs, err := repo.FindRecent(10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, newer.ID, jobs[0].ID)
	assert.Equal(t, older.ID, jobs[1].ID)
}

func TestRepository_FindRecentHonorsLimit(t *testing.T) {
	repo := setupTestRepo(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(newTestJob("https://youtu.be/abc")))
	}

	jobs, err := repo.FindRecent(3)
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
}

func TestRepository_FindByStatus(t *testing.T) {
	repo := setupTestRepo(t)

	running := newTestJob("https://youtu.be/running")
	require.NoError(t, repo.Create(running))

	done := newTestJob("https://youtu.be/done")
	done.ApplyResult(domain.Completed())
	require.NoError(t, repo.Create(done))

	jobs, err := repo.FindByStatus(domain.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, done.ID, jobs[0].ID)
}

func TestRepository_GetStats(t *testing.T) {
	repo := setupTestRepo(t)

	completed := newTestJob("https://youtu.be/a")
	completed.ApplyResult(domain.Completed())
	require.NoError(t, repo.Create(completed))

	failed := newTestJob("https://youtu.be/b")
	failed.ApplyResult(domain.Failed(1, "", errors.New("boom")))
	require.NoError(t, repo.Create(failed))

	cancelled := newTestJob("https://youtu.be/c")
	cancelled.ApplyResult(domain.Cancelled())
	require.NoError(t, repo.Create(cancelled))

	require.NoError(t, repo.Create(newTestJob("https://youtu.be/d")))

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Equal(t, int64(1), stats.Running)
}

func TestRepository_Count(t *testing.T) {
	repo := setupTestRepo(t)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, repo.Create(newTestJob("https://youtu.be/a")))
	count, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cadencetest "github.com/veldtlabs/cadence/internal/testing"
	"github.com/veldtlabs/cadence/internal/util"
)

func createRunJob(t *testing.T, store *Store) *Job {
	t.Helper()
	job := testJob("backup")
	require.NoError(t, store.CreateJob(job))
	return job
}

func TestRunLifecycle(t *testing.T) {
	db := cadencetest.CreateTestDB(t)
	store := NewStore(db)
	runs := NewRunStore(db)
	job := createRunJob(t, store)

	started := time.Now().UTC()
	run := &Run{
		ID:        NewJobID(),
		JobID:     job.ID,
		Status:    RunStatusRunning,
		StartedAt: started.Format(time.RFC3339),
		LogFile:   util.Ptr("logs/backup_2026-03-15.log"),
	}
	require.NoError(t, runs.CreateRun(run))

	// Start transition persisted
	retrieved, err := runs.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusRunning, retrieved.Status)
	assert.Nil(t, retrieved.FinishedAt)
	assert.Nil(t, retrieved.ExitCode)

	// Completion transition
	run.Status = RunStatusSuccess
	run.FinishedAt = util.Ptr(started.Add(3 * time.Second).Format(time.RFC3339))
	run.DurationMs = util.Ptr(3000)
	run.ExitCode = util.Ptr(0)
	require.NoError(t, runs.UpdateRun(run))

	retrieved, err = runs.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusSuccess, retrieved.Status)
	require.NotNil(t, retrieved.DurationMs)
	assert.Equal(t, 3000, *retrieved.DurationMs)
	require.NotNil(t, retrieved.ExitCode)
	assert.Equal(t, 0, *retrieved.ExitCode)
}

func TestUpdateRunNotFound(t *testing.T) {
	db := cadencetest.CreateTestDB(t)
	runs := NewRunStore(db)

	err := runs.UpdateRun(&Run{ID: "missing", Status: RunStatusSuccess})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRuns(t *testing.T) {
	db := cadencetest.CreateTestDB(t)
	store := NewStore(db)
	runs := NewRunStore(db)
	job := createRunJob(t, store)

	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	statuses := []string{RunStatusSuccess, RunStatusError, RunStatusSuccess}
	for i, status := range statuses {
		run := &Run{
			ID:        NewJobID(),
			JobID:     job.ID,
			Status:    status,
			StartedAt: base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		}
		require.NoError(t, runs.CreateRun(run))
	}

	t.Run("returns newest first with total", func(t *testing.T) {
		page, total, err := runs.ListRuns(job.ID, 10, 0, "")
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, page, 3)
		assert.Equal(t, base.Add(2*time.Hour).Format(time.RFC3339), page[0].StartedAt)
	})

	t.Run("filters by status", func(t *testing.T) {
		page, total, err := runs.ListRuns(job.ID, 10, 0, RunStatusError)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, page, 1)
		assert.Equal(t, RunStatusError, page[0].Status)
	})

	t.Run("paginates", func(t *testing.T) {
		page, total, err := runs.ListRuns(job.ID, 2, 2, "")
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, page, 1)
	})
}

func TestLatestRun(t *testing.T) {
	db := cadencetest.CreateTestDB(t)
	store := NewStore(db)
	runs := NewRunStore(db)
	job := createRunJob(t, store)

	latest, err := runs.LatestRun(job.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		require.NoError(t, runs.CreateRun(&Run{
			ID:        NewJobID(),
			JobID:     job.ID,
			Status:    RunStatusSuccess,
			StartedAt: base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		}))
	}

	latest, err = runs.LatestRun(job.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, base.Add(time.Hour).Format(time.RFC3339), latest.StartedAt)
}

func TestCleanupOldRuns(t *testing.T) {
	db := cadencetest.CreateTestDB(t)
	store := NewStore(db)
	runs := NewRunStore(db)
	job := createRunJob(t, store)

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	old := &Run{
		ID:        NewJobID(),
		JobID:     job.ID,
		Status:    RunStatusSuccess,
		StartedAt: now.AddDate(0, 0, -40).Format(time.RFC3339),
	}
	recent := &Run{
		ID:        NewJobID(),
		JobID:     job.ID,
		Status:    RunStatusSuccess,
		StartedAt: now.AddDate(0, 0, -5).Format(time.RFC3339),
	}
	require.NoError(t, runs.CreateRun(old))
	require.NoError(t, runs.CreateRun(recent))

	deleted, err := runs.CleanupOldRuns(30, now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, total, err := runs.ListRuns(job.ID, 10, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

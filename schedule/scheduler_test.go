package schedule

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cadencetest "github.com/veldtlabs/cadence/internal/testing"
)

// recordingExecutor counts executions without running anything
type recordingExecutor struct {
	executed []string // job names in execution order
	fail     bool
}

func (e *recordingExecutor) Execute(job *Job, now time.Time) error {
	e.executed = append(e.executed, job.Name)
	if e.fail {
		return assert.AnError
	}
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *recordingExecutor) {
	t.Helper()
	db := cadencetest.CreateTestDB(t)
	exec := &recordingExecutor{}
	return NewScheduler(NewStore(db), exec, zap.NewNop().Sugar()), exec
}

func TestFirstRun(t *testing.T) {
	interval, err := ParseInterval("1h")
	require.NoError(t, err)

	t.Run("now past the anchor advances to the next aligned slot", func(t *testing.T) {
		// Anchor 10:00, hourly, now 10:05 -> next run 11:00
		now := time.Date(2026, 3, 15, 10, 5, 0, 0, time.UTC)
		first := FirstRun(ClockTime{Hour: 10}, interval, now)
		assert.Equal(t, time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC), first)
	})

	t.Run("anchor in the future is used directly", func(t *testing.T) {
		now := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
		first := FirstRun(ClockTime{Hour: 10}, interval, now)
		assert.Equal(t, time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), first)
	})

	t.Run("now exactly on the anchor means strictly after", func(t *testing.T) {
		now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
		first := FirstRun(ClockTime{Hour: 10}, interval, now)
		assert.Equal(t, time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC), first)
	})

	t.Run("long downtime skips whole multiples, preserving phase", func(t *testing.T) {
		// Anchor 10:00, hourly, now three days and 20 minutes later:
		// next run keeps the :00 phase
		now := time.Date(2026, 3, 18, 10, 20, 0, 0, time.UTC)
		first := FirstRun(ClockTime{Hour: 10}, interval, now)
		assert.Equal(t, time.Date(2026, 3, 18, 11, 0, 0, 0, time.UTC), first)
	})

	t.Run("sub-day intervals stay anchored to the start time", func(t *testing.T) {
		sixh, err := ParseInterval("6h")
		require.NoError(t, err)

		// Anchor 02:00, 6h interval, now 13:30 -> 02:00 + 2*6h = 14:00
		now := time.Date(2026, 3, 15, 13, 30, 0, 0, time.UTC)
		first := FirstRun(ClockTime{Hour: 2}, sixh, now)
		assert.Equal(t, time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC), first)
	})
}

func TestScheduleJob(t *testing.T) {
	sched, _ := newTestScheduler(t)

	now := time.Date(2026, 3, 15, 10, 5, 0, 0, time.UTC)
	sched.SetClock(func() time.Time { return now })
	sched.SetLogDir("/var/log/cadence")

	job := &Job{
		ID:               NewJobID(),
		Name:             "backup",
		ScriptPath:       "/opt/scripts/backup.py",
		StartTime:        "10:00:00",
		RepeatInterval:   "1h",
		LogRetentionDays: 14,
	}

	require.NoError(t, sched.ScheduleJob(job))

	retrieved, err := sched.Store().GetJob(job.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved.NextRunAt)
	assert.True(t, retrieved.Active)
	assert.Equal(t, time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC), retrieved.NextRunAt.UTC())
	assert.Equal(t, "/var/log/cadence/backup", retrieved.LogPath)
}

func TestTick(t *testing.T) {
	t.Run("fires due job once and advances past now", func(t *testing.T) {
		sched, exec := newTestScheduler(t)
		store := sched.Store()

		nextRun := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
		job := &Job{
			ID:               NewJobID(),
			Name:             "backup",
			ScriptPath:       "/opt/scripts/backup.py",
			StartTime:        "10:00:00",
			RepeatInterval:   "1h",
			LogRetentionDays: 14,
			Active:           true,
			NextRunAt:        &nextRun,
		}
		require.NoError(t, store.CreateJob(job))

		now := nextRun.Add(2 * time.Second)
		require.NoError(t, sched.Tick(now))

		assert.Equal(t, []string{"backup"}, exec.executed)

		retrieved, err := store.GetJob(job.ID)
		require.NoError(t, err)
		assert.Equal(t, nextRun.Add(time.Hour), retrieved.NextRunAt.UTC())

		// A second tick at the same instant fires nothing
		require.NoError(t, sched.Tick(now))
		assert.Equal(t, []string{"backup"}, exec.executed)
	})

	t.Run("does not backfill missed occurrences", func(t *testing.T) {
		sched, exec := newTestScheduler(t)
		store := sched.Store()

		// Job was due five hours ago; it runs once and the schedule
		// jumps to the next aligned slot after now.
		nextRun := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
		job := &Job{
			ID:               NewJobID(),
			Name:             "hourly",
			ScriptPath:       "/opt/scripts/hourly.py",
			StartTime:        "10:00:00",
			RepeatInterval:   "1h",
			LogRetentionDays: 7,
			Active:           true,
			NextRunAt:        &nextRun,
		}
		require.NoError(t, store.CreateJob(job))

		now := time.Date(2026, 3, 15, 15, 10, 0, 0, time.UTC)
		require.NoError(t, sched.Tick(now))

		assert.Len(t, exec.executed, 1)

		retrieved, err := store.GetJob(job.ID)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 15, 16, 0, 0, 0, time.UTC), retrieved.NextRunAt.UTC())
	})

	t.Run("advances schedule even when execution fails", func(t *testing.T) {
		sched, exec := newTestScheduler(t)
		exec.fail = true
		store := sched.Store()

		nextRun := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
		job := &Job{
			ID:               NewJobID(),
			Name:             "flaky",
			ScriptPath:       "/opt/scripts/flaky.py",
			StartTime:        "10:00:00",
			RepeatInterval:   "30m",
			LogRetentionDays: 7,
			Active:           true,
			NextRunAt:        &nextRun,
		}
		require.NoError(t, store.CreateJob(job))

		now := nextRun.Add(time.Second)
		require.NoError(t, sched.Tick(now))

		retrieved, err := store.GetJob(job.ID)
		require.NoError(t, err)
		assert.Equal(t, nextRun.Add(30*time.Minute), retrieved.NextRunAt.UTC())
	})

	t.Run("ignores future and inactive jobs", func(t *testing.T) {
		sched, exec := newTestScheduler(t)
		store := sched.Store()

		future := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
		job := &Job{
			ID:               NewJobID(),
			Name:             "later",
			ScriptPath:       "/opt/scripts/later.py",
			StartTime:        "12:00:00",
			RepeatInterval:   "1h",
			LogRetentionDays: 7,
			Active:           true,
			NextRunAt:        &future,
		}
		require.NoError(t, store.CreateJob(job))

		require.NoError(t, sched.Tick(future.Add(-time.Hour)))
		assert.Empty(t, exec.executed)
	})
}

func TestRecoverFromStore(t *testing.T) {
	t.Run("fast-forwards stale schedules without executing", func(t *testing.T) {
		sched, exec := newTestScheduler(t)
		store := sched.Store()

		stale := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
		job := &Job{
			ID:               NewJobID(),
			Name:             "nightly",
			ScriptPath:       "/opt/scripts/nightly.py",
			StartTime:        "02:00:00",
			RepeatInterval:   "6h",
			LogRetentionDays: 7,
			Active:           true,
			NextRunAt:        &stale,
		}
		require.NoError(t, store.CreateJob(job))

		// Process restarts five days later at 03:15
		now := time.Date(2026, 3, 15, 3, 15, 0, 0, time.UTC)
		require.NoError(t, sched.RecoverFromStore(now))

		assert.Empty(t, exec.executed, "recovery must not execute anything")

		retrieved, err := store.GetJob(job.ID)
		require.NoError(t, err)
		// Phase preserved: 02:00 + k*6h, first slot strictly after 03:15 is 08:00
		assert.Equal(t, time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC), retrieved.NextRunAt.UTC())
	})

	t.Run("a persist failure for one job does not block the others", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{
			"id", "name", "script_path", "start_time", "repeat_interval",
			"log_path", "python_exec", "venv", "working_dir",
			"log_retention_days", "active", "next_run_at", "created_at", "updated_at",
		}).
			AddRow("j1", "first", "/a.py", "02:00:00", "6h", "", "", "", "", 7, 1,
				"2026-03-10T02:00:00Z", "2026-03-01T00:00:00Z", "2026-03-01T00:00:00Z").
			AddRow("j2", "second", "/b.py", "02:00:00", "6h", "", "", "", "", 7, 1,
				"2026-03-10T02:00:00Z", "2026-03-01T00:00:00Z", "2026-03-01T00:00:00Z")

		mock.ExpectQuery("SELECT (.+) FROM jobs").WillReturnRows(rows)
		mock.ExpectExec("UPDATE jobs").WillReturnError(assert.AnError)
		mock.ExpectExec("UPDATE jobs").WillReturnResult(sqlmock.NewResult(0, 1))

		exec := &recordingExecutor{}
		sched := NewScheduler(NewStore(db), exec, zap.NewNop().Sugar())

		now := time.Date(2026, 3, 15, 3, 15, 0, 0, time.UTC)
		require.NoError(t, sched.RecoverFromStore(now),
			"one job failing to persist must not abort recovery")

		// Both updates were attempted, so the second job recovered
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("leaves future schedules untouched", func(t *testing.T) {
		sched, _ := newTestScheduler(t)
		store := sched.Store()

		future := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
		job := &Job{
			ID:               NewJobID(),
			Name:             "evening",
			ScriptPath:       "/opt/scripts/evening.py",
			StartTime:        "18:00:00",
			RepeatInterval:   "12h",
			LogRetentionDays: 7,
			Active:           true,
			NextRunAt:        &future,
		}
		require.NoError(t, store.CreateJob(job))

		require.NoError(t, sched.RecoverFromStore(future.Add(-2*time.Hour)))

		retrieved, err := store.GetJob(job.ID)
		require.NoError(t, err)
		assert.Equal(t, future, retrieved.NextRunAt.UTC())
	})
}

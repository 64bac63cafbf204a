package schedule

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/cadence/errors"
)

// Failure-path tests drive the store against sqlmock so database errors
// can be produced deterministically.

func TestStoreFailures(t *testing.T) {
	t.Run("CreateJob wraps database errors as persistence failures", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("INSERT INTO jobs").WillReturnError(assert.AnError)

		store := NewStore(db)
		job := testJob("backup")
		err = store.CreateJob(job)

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrPersistenceFailure))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListJobsDue wraps query errors", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT (.+) FROM jobs").WillReturnError(assert.AnError)

		store := NewStore(db)
		_, err = store.ListJobsDue(time.Now())

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrPersistenceFailure))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateJobSchedule wraps exec errors", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE jobs").WillReturnError(assert.AnError)

		store := NewStore(db)
		err = store.UpdateJobSchedule("job-id", time.Now())

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrPersistenceFailure))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt timestamp surfaces as scan error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{
			"id", "name", "script_path", "start_time", "repeat_interval",
			"log_path", "python_exec", "venv", "working_dir",
			"log_retention_days", "active", "next_run_at", "created_at", "updated_at",
		}).AddRow("j1", "backup", "/s.py", "02:00:00", "6h", "", "", "", "", 14, 1, "not-a-timestamp", "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z")

		mock.ExpectQuery("SELECT (.+) FROM jobs").WillReturnRows(rows)

		store := NewStore(db)
		_, err = store.GetJob("j1")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "next_run_at")
	})
}

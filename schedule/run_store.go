package schedule

import (
	"database/sql"
	"time"

	"github.com/veldtlabs/cadence/errors"
)

// RunStore handles persistence of job run history
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new run store
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// CreateRun creates a new run record
func (s *RunStore) CreateRun(run *Run) error {
	query := `
		INSERT INTO runs (
			id, job_id, status, started_at, finished_at,
			duration_ms, exit_code, error_message, log_file
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Convert optional fields to driver-level NULLs
	var finishedAt, durationMs, exitCode, errorMessage, logFile interface{}
	if run.FinishedAt != nil {
		finishedAt = *run.FinishedAt
	}
	if run.DurationMs != nil {
		durationMs = *run.DurationMs
	}
	if run.ExitCode != nil {
		exitCode = *run.ExitCode
	}
	if run.ErrorMessage != nil {
		errorMessage = *run.ErrorMessage
	}
	if run.LogFile != nil {
		logFile = *run.LogFile
	}

	_, err := s.db.Exec(query,
		run.ID,
		run.JobID,
		run.Status,
		run.StartedAt,
		finishedAt,
		durationMs,
		exitCode,
		errorMessage,
		logFile,
	)

	if err != nil {
		return errors.WrapPersistence(err, "failed to create run")
	}

	return nil
}

// UpdateRun updates an existing run record
func (s *RunStore) UpdateRun(run *Run) error {
	query := `
		UPDATE runs
		SET status = ?,
		    finished_at = ?,
		    duration_ms = ?,
		    exit_code = ?,
		    error_message = ?,
		    log_file = ?
		WHERE id = ?
	`

	var finishedAt, durationMs, exitCode, errorMessage, logFile interface{}
	if run.FinishedAt != nil {
		finishedAt = *run.FinishedAt
	}
	if run.DurationMs != nil {
		durationMs = *run.DurationMs
	}
	if run.ExitCode != nil {
		exitCode = *run.ExitCode
	}
	if run.ErrorMessage != nil {
		errorMessage = *run.ErrorMessage
	}
	if run.LogFile != nil {
		logFile = *run.LogFile
	}

	result, err := s.db.Exec(query,
		run.Status,
		finishedAt,
		durationMs,
		exitCode,
		errorMessage,
		logFile,
		run.ID,
	)

	if err != nil {
		return errors.WrapPersistence(err, "failed to update run")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.WrapPersistence(err, "failed to check rows affected")
	}
	if rowsAffected == 0 {
		return errors.Newf("run not found: %s", run.ID)
	}

	return nil
}

// scanRun scans a run row from any row-shaped source
func scanRun(row interface{ Scan(...interface{}) error }) (*Run, error) {
	var run Run
	var finishedAt, errorMessage, logFile sql.NullString
	var durationMs, exitCode sql.NullInt64

	err := row.Scan(
		&run.ID,
		&run.JobID,
		&run.Status,
		&run.StartedAt,
		&finishedAt,
		&durationMs,
		&exitCode,
		&errorMessage,
		&logFile,
	)
	if err != nil {
		return nil, err
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.String
	}
	if durationMs.Valid {
		d := int(durationMs.Int64)
		run.DurationMs = &d
	}
	if exitCode.Valid {
		c := int(exitCode.Int64)
		run.ExitCode = &c
	}
	if errorMessage.Valid {
		run.ErrorMessage = &errorMessage.String
	}
	if logFile.Valid {
		run.LogFile = &logFile.String
	}

	return &run, nil
}

// GetRun retrieves a run by ID
func (s *RunStore) GetRun(id string) (*Run, error) {
	query := `
		SELECT id, job_id, status, started_at, finished_at,
		       duration_ms, exit_code, error_message, log_file
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(s.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Newf("run not found: %s", id)
		}
		return nil, errors.WrapPersistence(err, "failed to get run")
	}

	return run, nil
}

// ListRuns retrieves runs for a job with pagination and optional status filter,
// newest first. Returns the page plus the total matching count.
func (s *RunStore) ListRuns(jobID string, limit, offset int, statusFilter string) ([]*Run, int, error) {
	baseQuery := ` FROM runs WHERE job_id = ?`
	args := []interface{}{jobID}

	if statusFilter != "" {
		baseQuery += " AND status = ?"
		args = append(args, statusFilter)
	}

	countQuery := "SELECT COUNT(*)" + baseQuery
	var total int
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.WrapPersistence(err, "failed to count runs")
	}

	query := `
		SELECT id, job_id, status, started_at, finished_at,
		       duration_ms, exit_code, error_message, log_file
	` + baseQuery + `
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, errors.WrapPersistence(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, errors.WrapPersistence(err, "failed to scan run")
		}
		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, errors.WrapPersistence(err, "error iterating runs")
	}

	return runs, total, nil
}

// LatestRun returns the most recent run for a job, or nil when none exist
func (s *RunStore) LatestRun(jobID string) (*Run, error) {
	query := `
		SELECT id, job_id, status, started_at, finished_at,
		       duration_ms, exit_code, error_message, log_file
		FROM runs
		WHERE job_id = ?
		ORDER BY started_at DESC
		LIMIT 1
	`

	run, err := scanRun(s.db.QueryRow(query, jobID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapPersistence(err, "failed to get latest run")
	}

	return run, nil
}

// CleanupOldRuns deletes run records older than the retention period.
// Returns the number of runs deleted.
//
// This implements TTL cleanup to prevent unbounded growth of the runs table.
func (s *RunStore) CleanupOldRuns(retentionDays int, now time.Time) (int, error) {
	cutoffTime := now.AddDate(0, 0, -retentionDays).UTC().Format(time.RFC3339)

	result, err := s.db.Exec(`DELETE FROM runs WHERE started_at < ?`, cutoffTime)
	if err != nil {
		return 0, errors.WrapPersistence(err, "failed to cleanup old runs")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, errors.WrapPersistence(err, "failed to get rows affected")
	}

	return int(deleted), nil
}

package schedule

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/veldtlabs/cadence/errors"
)

// Store handles persistence of scheduled jobs and global configuration.
// It is the single source of truth for the schedule: every transition is
// written through immediately, so a restart needs no separate state file.
type Store struct {
	db *sql.DB
}

// NewStore creates a new schedule store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for sibling stores
func (s *Store) DB() *sql.DB {
	return s.db
}

// NewJobID generates a unique job identifier
func NewJobID() string {
	return uuid.NewString()
}

const jobColumns = `id, name, script_path, start_time, repeat_interval,
	       log_path, python_exec, venv, working_dir,
	       log_retention_days, active, next_run_at, created_at, updated_at`

// CreateJob creates a new scheduled job
func (s *Store) CreateJob(job *Job) error {
	query := `
		INSERT INTO jobs (
			id, name, script_path, start_time, repeat_interval,
			log_path, python_exec, venv, working_dir,
			log_retention_days, active, next_run_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	var nextRunAt interface{}
	if job.NextRunAt != nil {
		// Stored timestamps must be UTC: due checks compare the RFC3339
		// text lexicographically, so a zone offset would shift them.
		nextRunAt = job.NextRunAt.UTC().Format(time.RFC3339)
	}

	_, err := s.db.Exec(query,
		job.ID,
		job.Name,
		job.ScriptPath,
		job.StartTime,
		job.RepeatInterval,
		job.LogPath,
		job.PythonExec,
		job.Venv,
		job.WorkingDir,
		job.LogRetentionDays,
		job.Active,
		nextRunAt,
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)

	if err != nil {
		return errors.WrapPersistence(err, "failed to create job")
	}

	job.CreatedAt = now
	job.UpdatedAt = now
	return nil
}

// scanJob scans a job row from any row-shaped source
func scanJob(row interface{ Scan(...interface{}) error }) (*Job, error) {
	var job Job
	var active int
	var nextRunAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&job.ID,
		&job.Name,
		&job.ScriptPath,
		&job.StartTime,
		&job.RepeatInterval,
		&job.LogPath,
		&job.PythonExec,
		&job.Venv,
		&job.WorkingDir,
		&job.LogRetentionDays,
		&active,
		&nextRunAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Active = active != 0

	// Parse timestamps (return error if parsing fails - indicates data corruption or schema mismatch)
	if nextRunAt.Valid {
		t, err := time.Parse(time.RFC3339, nextRunAt.String)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse next_run_at for job %s", job.ID)
		}
		job.NextRunAt = &t
	}

	job.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse created_at for job %s", job.ID)
	}

	job.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse updated_at for job %s", job.ID)
	}

	return &job, nil
}

// GetJob retrieves a job by ID (active or not)
func (s *Store) GetJob(id string) (*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`

	job, err := scanJob(s.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewJobNotFound(id)
		}
		return nil, errors.WrapPersistence(err, "failed to get job")
	}

	return job, nil
}

// GetJobByName retrieves an active job by name
func (s *Store) GetJobByName(name string) (*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE name = ? AND active = 1`

	job, err := scanJob(s.db.QueryRow(query, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewJobNotFound(name)
		}
		return nil, errors.WrapPersistence(err, "failed to get job by name")
	}

	return job, nil
}

// ListJobs returns jobs ordered by creation time, newest first.
// Deactivated jobs are excluded unless includeInactive is set.
func (s *Store) ListJobs(includeInactive bool) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY created_at DESC LIMIT 1000`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, errors.WrapPersistence(err, "failed to list jobs")
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			// A corrupt row must not hide the healthy ones
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// ListJobsDue returns active jobs whose next_run_at has arrived.
// Results are ordered by next_run_at ASC (oldest due jobs first) for
// deterministic execution. Limited to 100 jobs per tick.
func (s *Store) ListJobsDue(now time.Time) ([]*Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE active = 1 AND next_run_at IS NOT NULL AND next_run_at <= ?
		ORDER BY next_run_at ASC
		LIMIT 100
	`

	rows, err := s.db.Query(query, now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, errors.WrapPersistence(err, "failed to list due jobs")
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// GetNextScheduledJob returns the soonest active scheduled job,
// or nil when nothing is scheduled.
func (s *Store) GetNextScheduledJob() (*Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE active = 1 AND next_run_at IS NOT NULL
		ORDER BY next_run_at ASC
		LIMIT 1
	`

	job, err := scanJob(s.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil // No jobs scheduled
	}
	if err != nil {
		return nil, errors.WrapPersistence(err, "failed to get next scheduled job")
	}

	return job, nil
}

// UpdateJob persists modified job fields (script, start time, interval,
// retention and schedule) for an existing job.
func (s *Store) UpdateJob(job *Job) error {
	query := `
		UPDATE jobs
		SET script_path = ?,
		    start_time = ?,
		    repeat_interval = ?,
		    log_path = ?,
		    python_exec = ?,
		    venv = ?,
		    working_dir = ?,
		    log_retention_days = ?,
		    next_run_at = ?,
		    updated_at = ?
		WHERE id = ? AND active = 1
	`

	var nextRunAt interface{}
	if job.NextRunAt != nil {
		nextRunAt = job.NextRunAt.UTC().Format(time.RFC3339)
	}

	result, err := s.db.Exec(query,
		job.ScriptPath,
		job.StartTime,
		job.RepeatInterval,
		job.LogPath,
		job.PythonExec,
		job.Venv,
		job.WorkingDir,
		job.LogRetentionDays,
		nextRunAt,
		time.Now().UTC().Format(time.RFC3339),
		job.ID,
	)
	if err != nil {
		return errors.WrapPersistence(err, "failed to update job")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.WrapPersistence(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.NewJobNotFound(job.ID)
	}

	return nil
}

// UpdateJobSchedule updates only the next run time of a job
func (s *Store) UpdateJobSchedule(jobID string, nextRun time.Time) error {
	query := `
		UPDATE jobs
		SET next_run_at = ?,
		    updated_at = ?
		WHERE id = ? AND active = 1
	`

	result, err := s.db.Exec(query,
		nextRun.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		jobID,
	)
	if err != nil {
		return errors.WrapPersistence(err, "failed to update job schedule")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.WrapPersistence(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.NewJobNotFound(jobID)
	}

	return nil
}

// DeactivateJob soft-deletes a job. The row and its run history are kept;
// the job just stops being scheduled or listed.
func (s *Store) DeactivateJob(jobID string) error {
	query := `
		UPDATE jobs
		SET active = 0,
		    next_run_at = NULL,
		    updated_at = ?
		WHERE id = ? AND active = 1
	`

	result, err := s.db.Exec(query, time.Now().UTC().Format(time.RFC3339), jobID)
	if err != nil {
		return errors.WrapPersistence(err, "failed to deactivate job")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.WrapPersistence(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.NewJobNotFound(jobID)
	}

	return nil
}

// GetConfigValue reads a global configuration value
func (s *Store) GetConfigValue(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.WrapPersistence(err, "failed to get config value")
	}
	return value, nil
}

// SetConfigValue writes a global configuration value
func (s *Store) SetConfigValue(key, value string) error {
	query := `
		INSERT INTO config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	_, err := s.db.Exec(query, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.WrapPersistence(err, "failed to set config value")
	}
	return nil
}

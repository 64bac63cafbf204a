package logger

// Standard field names for consistent structured logging across Cadence.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity
	FieldJobID   = "job_id"
	FieldJobName = "job"
	FieldRunID   = "run_id"

	// Scheduling
	FieldNextRun  = "next_run_at"
	FieldInterval = "interval"
	FieldTick     = "tick"

	// Execution
	FieldScript     = "script"
	FieldCommand    = "command"
	FieldWorkingDir = "working_dir"
	FieldLogFile    = "log_file"
	FieldStatus     = "status"
	FieldExitCode   = "exit_code"
	FieldDurationMS = "duration_ms"

	// Retention
	FieldPath          = "path"
	FieldRetentionDays = "retention_days"
	FieldDeleted       = "deleted"

	// Errors
	FieldError = "error"
)

package schedule

// Run represents a single execution of a scheduled job
//
// Each time a job's script runs, a Run record is created to track:
// - Timing (started_at, finished_at, duration)
// - Status (running, success, error)
// - Outcome (exit code, error message, log artifact path)
//
// This provides execution history for debugging, monitoring and
// failure troubleshooting.
type Run struct {
	// Identity
	ID    string `json:"id"`
	JobID string `json:"job_id"`

	// Execution status
	Status string `json:"status"` // "running", "success", "error"

	// Timing
	StartedAt  string  `json:"started_at"`            // RFC3339 timestamp
	FinishedAt *string `json:"finished_at,omitempty"` // RFC3339 timestamp (null if running)
	DurationMs *int    `json:"duration_ms,omitempty"` // Milliseconds (null if running)

	// Outcome
	ExitCode     *int    `json:"exit_code,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
	LogFile      *string `json:"log_file,omitempty"` // path to the captured output
}

// Run status constants for type safety
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

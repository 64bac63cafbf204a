package schedule

import "time"

// Job represents a recurring scheduled script
type Job struct {
	ID               string
	Name             string
	ScriptPath       string
	StartTime        string // canonical HH:MM:SS phase anchor
	RepeatInterval   string // canonical interval, e.g. "6h"
	LogPath          string // per-job log directory, assigned at first schedule
	PythonExec       string // per-job interpreter; empty means resolve at run time
	Venv             string // per-job virtualenv root; beats PythonExec when set
	WorkingDir       string // working directory for the script; empty means the script's own
	LogRetentionDays int
	Active           bool       // false = soft deleted
	NextRunAt        *time.Time // nil until scheduled
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Interval returns the parsed repeat interval.
// The stored form is canonical so parsing cannot fail for persisted jobs.
func (j *Job) Interval() (Interval, error) {
	return ParseInterval(j.RepeatInterval)
}

// StartClock returns the parsed start time anchor.
func (j *Job) StartClock() (ClockTime, error) {
	return ParseStartTime(j.StartTime)
}

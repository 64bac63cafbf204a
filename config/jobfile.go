package config

import (
	"encoding/json"
	"os"

	"github.com/veldtlabs/cadence/errors"
)

// JobFile is a job definition loaded from a JSON file, the batch-friendly
// alternative to passing every flag on `cadence add`.
type JobFile struct {
	Name         string `json:"name"`
	Script       string `json:"script"`
	StartTime    string `json:"start_time"`
	RepeatTime   string `json:"repeat_time"`
	LogRetention int    `json:"log_retention"`

	// Optional per-job execution settings
	PythonExec string `json:"python_exec"`
	Venv       string `json:"venv"`
	WorkingDir string `json:"working_dir"`
}

// requiredJobFields must all be present in a job definition file.
var requiredJobFields = []string{"name", "script", "start_time", "repeat_time", "log_retention"}

// LoadJobFile reads and validates a JSON job definition.
//
// Presence is checked against the raw document so a missing field is
// distinguishable from a zero value.
func LoadJobFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read job file %s", path)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "invalid JSON in job file %s", path)
	}

	for _, field := range requiredJobFields {
		if _, ok := raw[field]; !ok {
			return nil, errors.Newf("missing required field in job file %s: %s", path, field)
		}
	}

	var jf JobFile
	if err := json.Unmarshal(data, &jf); err != nil {
		return nil, errors.Wrapf(err, "parse job file %s", path)
	}

	return &jf, nil
}

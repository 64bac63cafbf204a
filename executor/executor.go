// Package executor runs job scripts and records their runs.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/veldtlabs/cadence/errors"
	"github.com/veldtlabs/cadence/internal/util"
	"github.com/veldtlabs/cadence/logger"
	"github.com/veldtlabs/cadence/schedule"
)

// Config configures script execution
type Config struct {
	LogDir      string // root directory for per-job log artifacts
	Interpreter string // fallback interpreter when no venv is found
	VenvDir     string // virtualenv directory name looked up next to the script
}

// ScriptExecutor validates, launches and records script runs. It implements
// schedule.Executor: one run record per execution, written at start
// (running) and updated once on completion (success or error).
type ScriptExecutor struct {
	runs   *schedule.RunStore
	runner CommandRunner
	cfg    Config
	log    *zap.SugaredLogger
}

// New creates a script executor using the default os/exec runner
func New(runs *schedule.RunStore, cfg Config, log *zap.SugaredLogger) *ScriptExecutor {
	return NewWithRunner(runs, NewCommandRunner(), cfg, log)
}

// NewWithRunner creates a script executor with a custom command runner
func NewWithRunner(runs *schedule.RunStore, runner CommandRunner, cfg Config, log *zap.SugaredLogger) *ScriptExecutor {
	return &ScriptExecutor{
		runs:   runs,
		runner: runner,
		cfg:    cfg,
		log:    log,
	}
}

// resolveInterpreter picks the interpreter for a job. A per-job virtualenv
// beats a per-job executable name, which beats a virtualenv sitting next to
// the script, which beats the configured fallback.
func (e *ScriptExecutor) resolveInterpreter(job *schedule.Job) string {
	if job.Venv != "" {
		return filepath.Join(job.Venv, "bin", "python")
	}
	if job.PythonExec != "" {
		return job.PythonExec
	}
	venvPython := filepath.Join(filepath.Dir(job.ScriptPath), e.cfg.VenvDir, "bin", "python")
	if info, err := os.Stat(venvPython); err == nil && info.Mode().IsRegular() {
		return venvPython
	}
	return e.cfg.Interpreter
}

// workingDir returns the directory the script runs in, the script's own
// directory unless the job pins one.
func workingDir(job *schedule.Job) string {
	if job.WorkingDir != "" {
		return job.WorkingDir
	}
	return filepath.Dir(job.ScriptPath)
}

// logFilePath returns the per-job, per-day log artifact path. Jobs carry a
// stable log directory assigned at first schedule; jobs created before one
// was assigned fall back to a flat file under the global log root.
func (e *ScriptExecutor) logFilePath(job *schedule.Job, now time.Time) string {
	if job.LogPath != "" {
		return filepath.Join(job.LogPath, fmt.Sprintf("%s_%s.log", job.Name, now.Format("2006-01-02")))
	}
	return filepath.Join(e.cfg.LogDir, fmt.Sprintf("%s_%s.log", job.Name, now.Format("2006-01-02")))
}

// Execute runs a job's script once and records the run.
//
// Validation failures surface before anything is persisted: a run that was
// never launched leaves no record. Store failures after launch are logged
// but never block the script.
func (e *ScriptExecutor) Execute(job *schedule.Job, now time.Time) error {
	if err := ValidateScriptPath(job.ScriptPath); err != nil {
		return err
	}

	interpreter := e.resolveInterpreter(job)
	logFile := e.logFilePath(job, now)
	command := shellquote.Join(interpreter, job.ScriptPath)

	startTime := time.Now()
	run := &schedule.Run{
		ID:        schedule.NewJobID(),
		JobID:     job.ID,
		Status:    schedule.RunStatusRunning,
		StartedAt: startTime.UTC().Format(time.RFC3339),
		LogFile:   &logFile,
	}

	recorded := true
	if err := e.runs.CreateRun(run); err != nil {
		// Execution tracking must not block the schedule
		e.log.Warnw("Failed to create run record",
			logger.FieldJobName, job.Name,
			logger.FieldRunID, run.ID,
			logger.FieldError, err)
		recorded = false
	}

	e.log.Infow(fmt.Sprintf("Launching [job:%s]", job.Name),
		logger.FieldRunID, run.ID,
		logger.FieldCommand, command,
		logger.FieldWorkingDir, workingDir(job),
		logger.FieldLogFile, logFile)

	exitCode, runErr := e.launch(interpreter, job, logFile)

	finishedAt := time.Now()
	durationMs := int(finishedAt.Sub(startTime).Milliseconds())
	run.FinishedAt = util.Ptr(finishedAt.UTC().Format(time.RFC3339))
	run.DurationMs = &durationMs
	run.ExitCode = &exitCode

	if runErr != nil {
		run.Status = schedule.RunStatusError
		run.ErrorMessage = util.Ptr(runErr.Error())

		e.log.Errorw(fmt.Sprintf("Run FAILED [job:%s]", job.Name),
			logger.FieldRunID, run.ID,
			logger.FieldExitCode, exitCode,
			logger.FieldDurationMS, durationMs,
			logger.FieldError, runErr)
	} else {
		run.Status = schedule.RunStatusSuccess

		e.log.Infow(fmt.Sprintf("Run OK [job:%s]", job.Name),
			logger.FieldRunID, run.ID,
			logger.FieldDurationMS, durationMs)
	}

	if recorded {
		if err := e.runs.UpdateRun(run); err != nil {
			e.log.Errorw("Failed to update run record",
				logger.FieldRunID, run.ID,
				logger.FieldError, err)
			// Not critical - continue
		}
	}

	return runErr
}

// launch opens the log artifact and runs the script, appending combined
// stdout/stderr to the log file.
func (e *ScriptExecutor) launch(interpreter string, job *schedule.Job, logFile string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return -1, errors.Wrap(errors.Wrap(errors.ErrExecutionFailure, err.Error()), "failed to create log directory")
	}

	out, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return -1, errors.Wrap(errors.Wrap(errors.ErrExecutionFailure, err.Error()), "failed to open log file")
	}
	defer out.Close()

	fmt.Fprintf(out, "=== %s run at %s ===\n", job.Name, time.Now().Format(time.RFC3339))

	return e.runner.Run(context.Background(), workingDir(job), interpreter, []string{job.ScriptPath}, out, out)
}

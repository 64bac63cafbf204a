package executor

import (
	"context"
	"io"
	"os/exec"

	"github.com/veldtlabs/cadence/errors"
)

// CommandRunner launches a command and waits for it. Tests substitute a
// fake; the default runs real processes via os/exec.
type CommandRunner interface {
	// Run executes name with args, streaming output to stdout/stderr.
	// Returns the process exit code. err is non-nil when the process
	// could not be started or exited non-zero.
	Run(ctx context.Context, dir, name string, args []string, stdout, stderr io.Writer) (int, error)
}

// execRunner is the production CommandRunner
type execRunner struct{}

// NewCommandRunner returns the default os/exec-backed runner
func NewCommandRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, dir, name string, args []string, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), errors.Wrapf(errors.ErrExecutionFailure, "exit code %d", exitErr.ExitCode())
	}

	// Launch failure: interpreter missing, permissions, context cancelled
	return -1, errors.Wrap(errors.Wrap(errors.ErrExecutionFailure, err.Error()), "failed to launch")
}

// Package errors provides error handling for Cadence.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrJobNotFound) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// Sentinel errors for the scheduling and execution engine.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrInvalidIntervalFormat indicates a repeat interval that does not
	// match the <positive integer><h|m|s> grammar
	ErrInvalidIntervalFormat = New("invalid interval format")

	// ErrInvalidTimeFormat indicates a start time that is not HH:MM:SS
	ErrInvalidTimeFormat = New("invalid time format")

	// ErrInvalidScriptPath indicates a script path that is missing, has the
	// wrong extension, or contains shell metacharacters
	ErrInvalidScriptPath = New("invalid script path")

	// ErrJobNotFound indicates the referenced job does not exist or is inactive
	ErrJobNotFound = New("job not found")

	// ErrPersistenceFailure indicates a job store read or write failed
	ErrPersistenceFailure = New("persistence failure")

	// ErrExecutionFailure indicates a script launch failed or exited non-zero
	ErrExecutionFailure = New("execution failure")
)

// IsJobNotFound checks if an error is or wraps ErrJobNotFound.
func IsJobNotFound(err error) bool {
	return err != nil && Is(err, ErrJobNotFound)
}

// IsValidation checks if an error is one of the input-validation failures
// that must be surfaced to the caller before anything is persisted.
func IsValidation(err error) bool {
	return err != nil && IsAny(err, ErrInvalidIntervalFormat, ErrInvalidTimeFormat, ErrInvalidScriptPath)
}

// WrapPersistence wraps a database error as a persistence failure with context.
func WrapPersistence(err error, context string) error {
	return Wrap(Wrap(ErrPersistenceFailure, err.Error()), context)
}

// NewJobNotFound creates a job-not-found error naming the job.
func NewJobNotFound(jobID string) error {
	return Wrap(ErrJobNotFound, jobID)
}

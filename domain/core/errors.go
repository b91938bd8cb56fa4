package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input shape errors (recoverable per subject)
	ErrMissingColumn   = errors.New("missing column")
	ErrInvalidBoundary = errors.New("invalid boundary pair")
	ErrNoSegments      = errors.New("no valid segments")

	// Signal errors (fatal for one subject)
	ErrDegenerateSignal = errors.New("degenerate signal: zero variance")

	// Event table errors (programmer errors)
	ErrUnmappedTime     = errors.New("time index not covered by event intervals")
	ErrInvalidIntervals = errors.New("invalid event interval table")

	// Batch errors
	ErrEmptyTable       = errors.New("table has no data")
	ErrInvalidOptions   = errors.New("invalid options")
	ErrNoSubjects       = errors.New("no subjects produced output")
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewMissingColumnError(table, column string) error {
	return fmt.Errorf("%w: %s has no column %q", ErrMissingColumn, table, column)
}

func NewInvalidBoundaryError(row int, start, end float64, reason string) error {
	return fmt.Errorf("%w at row %d (%v, %v): %s", ErrInvalidBoundary, row, start, end, reason)
}

func NewDegenerateSignalError(subject string, value float64) error {
	return fmt.Errorf("%w: subject %s is constant at %v", ErrDegenerateSignal, subject, value)
}

func NewUnmappedTimeError(t int) error {
	return fmt.Errorf("%w: %d", ErrUnmappedTime, t)
}

func NewInvalidIntervalsError(index int, reason string) error {
	return fmt.Errorf("%w: interval %d %s", ErrInvalidIntervals, index, reason)
}

func NewOptionsError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidOptions, field, reason)
}

// Error checking helpers

// IsRecoverable reports whether err should skip a subject instead of aborting
// the batch.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrInvalidBoundary) ||
		errors.Is(err, ErrNoSegments) ||
		errors.Is(err, ErrDegenerateSignal)
}

func IsProgrammerError(err error) bool {
	return errors.Is(err, ErrUnmappedTime) ||
		errors.Is(err, ErrInvalidIntervals) ||
		errors.Is(err, ErrInvalidOptions)
}

func IsMissingColumn(err error) bool { return errors.Is(err, ErrMissingColumn) }

func IsNoSegments(err error) bool { return errors.Is(err, ErrNoSegments) }

func IsDegenerate(err error) bool { return errors.Is(err, ErrDegenerateSignal) }

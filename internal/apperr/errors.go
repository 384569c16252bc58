// Package apperr holds the error kinds shared by the monitor and the display
// pass. Callers wrap them with fmt.Errorf("%w: ...") and test with errors.Is.
package apperr

import (
	"errors"
	"os"
)

var (
	// ErrCapabilityUnavailable is returned when the sensor or the panel cannot
	// be opened or stops answering. Never retried.
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrStoreUnreachable wraps any store I/O failure other than a missing key.
	ErrStoreUnreachable = errors.New("store unreachable")

	// ErrParse marks a stored value that is not a valid number. It is always
	// absorbed into a placeholder and never leaves the render package.
	ErrParse = errors.New("parse failure")

	// ErrTerminated is the cancellation cause installed by the signal handler.
	ErrTerminated = errors.New("terminated")
)

// TerminatedError records which signal ended the process.
type TerminatedError struct {
	Signal os.Signal
}

func (e *TerminatedError) Error() string {
	if e.Signal == nil {
		return ErrTerminated.Error()
	}
	return "terminated by " + e.Signal.String()
}

func (e *TerminatedError) Unwrap() error { return ErrTerminated }

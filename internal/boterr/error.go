// Package boterr provides the error classes used to decide how a failure
// affects the processing of a component.
package boterr

import (
	"errors"
	"fmt"
	"time"
)

// TransientError is returned when an external service could not be reached
// or replied with a temporary failure. The operation can be retried later.
type TransientError struct {
	// Err is the wrapped original error
	Err error
	// After is the earliest point in time that the operation can be retried
	After time.Time
}

func NewTransientError(originalErr error, retryAfter time.Time) *TransientError {
	return &TransientError{
		Err:   originalErr,
		After: retryAfter,
	}
}

func NewTransientAnytimeError(originalErr error) *TransientError {
	return &TransientError{
		Err: originalErr,
	}
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func (e *TransientError) Error() string {
	if e.After.IsZero() {
		return fmt.Sprintf("transient error: %s", e.Err)
	}

	return fmt.Sprintf("transient error (retry after %s): %s", e.After, e.Err)
}

// DataError is returned when data received from an external service is
// inconsistent or can not be interpreted, e.g. a malformed version string.
// Retrying does not help, the data must be fixed at its source.
type DataError struct {
	Err error
}

func NewDataError(format string, a ...any) *DataError {
	return &DataError{Err: fmt.Errorf(format, a...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error: %s", e.Err)
}

// IsTransient returns true if err wraps a TransientError.
func IsTransient(err error) bool {
	var transientErr *TransientError
	return errors.As(err, &transientErr)
}

// IsData returns true if err wraps a DataError.
func IsData(err error) bool {
	var dataErr *DataError
	return errors.As(err, &dataErr)
}

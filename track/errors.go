package track

import (
	"errors"
)

// Sentinel errors for common error conditions.
// These can be used with errors.Is() for error handling.
var (
	// ErrNotFound indicates no status record exists for the execution id
	ErrNotFound = errors.New("execution status not found")

	// ErrInvalidConfiguration indicates required configuration is missing
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnrecognizedInput indicates an inbound payload matched none of the
	// recognized event shapes; callers acknowledge and drop it
	ErrUnrecognizedInput = errors.New("unrecognized input shape")

	// ErrTopologyUnavailable indicates the pipeline topology lookup failed;
	// the write path degrades to an update-only upsert
	ErrTopologyUnavailable = errors.New("pipeline topology unavailable")
)

// TrackError wraps an error with the operation and execution it occurred on.
type TrackError struct {
	// Op is the operation that failed (e.g. "upsert", "get", "notify")
	Op string

	// ExecutionID is the execution the operation was acting on, if known
	ExecutionID string

	// Err is the underlying error
	Err error
}

// NewTrackError creates a new TrackError.
func NewTrackError(op, executionID string, err error) *TrackError {
	return &TrackError{
		Op:          op,
		ExecutionID: executionID,
		Err:         err,
	}
}

// Error returns the error message.
func (e *TrackError) Error() string {
	if e.ExecutionID != "" {
		return e.Op + " execution " + e.ExecutionID + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *TrackError) Unwrap() error {
	return e.Err
}

package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrInvocationNotFound indicates an invocation record was not found by the given identifier.
	ErrInvocationNotFound = errors.New("invocation not found")

	// ErrInvalidRecord indicates a record is missing data required to store it.
	ErrInvalidRecord = errors.New("invalid invocation record")
)

// InvocationError wraps invocation record errors with additional context.
type InvocationError struct {
	Op           string // Operation being performed (e.g., "GetByID", "Save")
	InvocationID string // Invocation ID if applicable
	Err          error  // Underlying error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s operation failed for invocation %s: %v", e.Op, e.InvocationID, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for invocation errors.
func (e *InvocationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewInvocationError creates a new invocation error with context.
func NewInvocationError(op, invocationID string, err error) *InvocationError {
	return &InvocationError{
		Op:           op,
		InvocationID: invocationID,
		Err:          err,
	}
}

// IsInvocationNotFound checks if an error indicates an invocation record was not found.
func IsInvocationNotFound(err error) bool {
	return errors.Is(err, ErrInvocationNotFound)
}

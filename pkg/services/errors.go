// Package services implements the caller-side operations around flow invocations.
package services

import (
	"errors"
	"fmt"

	"github.com/museloop/genflow/pkg/persistence"
	"github.com/museloop/genflow/pkg/registry"
)

var (
	// ErrInvalidRequest indicates a malformed request (400 Bad Request).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrFlowNotFound is returned when no flow is registered under a name (404 Not Found).
	ErrFlowNotFound = registry.ErrFlowNotFound

	// ErrInvocationNotFound is returned when no invocation record has an id (404 Not Found).
	ErrInvocationNotFound = persistence.ErrInvocationNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// IsNotFoundError checks if an error names a missing flow or invocation.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrFlowNotFound) || errors.Is(err, ErrInvocationNotFound)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     ErrInvalidRequest,
	}
}

package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why a flow invocation failed.
type ErrorKind string

const (
	// ErrorKindInvalidInput means caller data failed the input shape. The backend was never called.
	ErrorKindInvalidInput ErrorKind = "invalid_input"
	// ErrorKindGenerationFailed covers backend errors, timeouts and empty primary payloads.
	ErrorKindGenerationFailed ErrorKind = "generation_failed"
	// ErrorKindContentFiltered means the backend declined on safety grounds.
	ErrorKindContentFiltered ErrorKind = "content_filtered"
	// ErrorKindInvalidOutput means the backend response failed the output shape.
	ErrorKindInvalidOutput ErrorKind = "invalid_output"
	// ErrorKindIncompleteOutput means a shape-valid response broke a business invariant.
	ErrorKindIncompleteOutput ErrorKind = "incomplete_output"
)

// Failure reasons attached to GenerationFailed errors.
const (
	ReasonTimeout       = "timeout"
	ReasonCancelled     = "cancelled"
	ReasonQuota         = "quota"
	ReasonBackend       = "backend_error"
	ReasonEmptyResponse = "empty_response"
	ReasonEmptyPayload  = "empty_payload"
	ReasonRender        = "render_error"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrGenerationFailed = errors.New("generation failed")
	ErrContentFiltered  = errors.New("content filtered")
	ErrInvalidOutput    = errors.New("invalid output")
	ErrIncompleteOutput = errors.New("incomplete output")
)

var kindSentinels = map[ErrorKind]error{
	ErrorKindInvalidInput:     ErrInvalidInput,
	ErrorKindGenerationFailed: ErrGenerationFailed,
	ErrorKindContentFiltered:  ErrContentFiltered,
	ErrorKindInvalidOutput:    ErrInvalidOutput,
	ErrorKindIncompleteOutput: ErrIncompleteOutput,
}

// Violation is one specific shape or invariant breach.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// FlowError is the failure payload of a flow invocation.
type FlowError struct {
	Flow       string      // Flow name, set by the orchestrator
	Kind       ErrorKind   // Failure class
	Reason     string      // Finer cause for GenerationFailed (timeout, quota, ...)
	Message    string      // Human-readable message
	Violations []Violation // Shape or invariant violations, if any
	Err        error       // Underlying error
}

func (e *FlowError) Error() string {
	var b strings.Builder

	if e.Flow != "" {
		b.WriteString(e.Flow)
		b.WriteString(": ")
	}

	b.WriteString(string(e.Kind))

	if e.Reason != "" {
		b.WriteString(" (")
		b.WriteString(e.Reason)
		b.WriteString(")")
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if len(e.Violations) > 0 {
		parts := make([]string, 0, len(e.Violations))
		for _, v := range e.Violations {
			parts = append(parts, v.String())
		}

		b.WriteString(" [")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString("]")
	}

	if e.Err != nil && e.Message == "" {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error kind, so errors.Is(err, ErrInvalidInput) works.
func (e *FlowError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// NewInvalidInput creates an InvalidInput failure.
func NewInvalidInput(violations []Violation) *FlowError {
	return &FlowError{
		Kind:       ErrorKindInvalidInput,
		Message:    "input does not match the flow input shape",
		Violations: violations,
	}
}

// NewInvalidOutput creates an InvalidOutput failure.
func NewInvalidOutput(message string, violations []Violation, err error) *FlowError {
	return &FlowError{
		Kind:       ErrorKindInvalidOutput,
		Message:    message,
		Violations: violations,
		Err:        err,
	}
}

// NewIncompleteOutput creates an IncompleteOutput failure.
func NewIncompleteOutput(message string, violations []Violation) *FlowError {
	return &FlowError{
		Kind:       ErrorKindIncompleteOutput,
		Message:    message,
		Violations: violations,
	}
}

// NewGenerationFailed creates a GenerationFailed failure with a reason.
func NewGenerationFailed(reason, message string, err error) *FlowError {
	return &FlowError{
		Kind:    ErrorKindGenerationFailed,
		Reason:  reason,
		Message: message,
		Err:     err,
	}
}

// NewContentFiltered creates a ContentFiltered failure.
func NewContentFiltered(message string, err error) *FlowError {
	return &FlowError{
		Kind:    ErrorKindContentFiltered,
		Message: message,
		Err:     err,
	}
}

// AsFlowError extracts a FlowError from an error chain.
func AsFlowError(err error) (*FlowError, bool) {
	var flowErr *FlowError
	if errors.As(err, &flowErr) {
		return flowErr, true
	}

	return nil, false
}

// KindOf returns the error kind, or an empty kind when err is not a FlowError.
func KindOf(err error) ErrorKind {
	if flowErr, ok := AsFlowError(err); ok {
		return flowErr.Kind
	}

	return ""
}

// IsRetryable reports whether a caller may retry the invocation.
// Only GenerationFailed qualifies; ContentFiltered and contract failures never do.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrGenerationFailed)
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsContentFiltered(err error) bool {
	return errors.Is(err, ErrContentFiltered)
}

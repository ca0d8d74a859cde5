package models

import (
	"encoding/json"
	"time"
)

// InvocationState is a step of the per-invocation state machine.
type InvocationState string

const (
	StateCreated           InvocationState = "created"
	StateInputValidated    InvocationState = "input_validated"
	StatePromptRendered    InvocationState = "prompt_rendered"
	StateBackendInvoked    InvocationState = "backend_invoked"
	StateOutputValidated   InvocationState = "output_validated"
	StateInvariantsChecked InvocationState = "invariants_checked"
	StateCompleted         InvocationState = "completed"
)

// InvocationStates lists the states in the only order they may be visited.
var InvocationStates = []InvocationState{
	StateCreated,
	StateInputValidated,
	StatePromptRendered,
	StateBackendInvoked,
	StateOutputValidated,
	StateInvariantsChecked,
	StateCompleted,
}

// Outcome is the terminal result of an invocation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Invocation describes one finished execution of a flow.
type Invocation struct {
	ID           string            `json:"id"`
	Flow         string            `json:"flow"`
	History      []InvocationState `json:"history"`
	Outcome      Outcome           `json:"outcome"`
	ErrorKind    ErrorKind         `json:"error_kind,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	BackendCalls int               `json:"backend_calls"`
	StartedAt    time.Time         `json:"started_at"`
	Duration     time.Duration     `json:"duration"`
}

// InvocationRecord is what a caller persists about an invocation it made.
type InvocationRecord struct {
	ID           string          `json:"id"`
	Flow         string          `json:"flow"`
	Outcome      Outcome         `json:"outcome"`
	Input        json.RawMessage `json:"input"`
	Output       json.RawMessage `json:"output,omitempty"`
	ErrorKind    ErrorKind       `json:"error_kind,omitempty"`
	ErrorReason  string          `json:"error_reason,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Violations   []Violation     `json:"violations,omitempty"`
	Attempts     int             `json:"attempts"`
	CreatedAt    time.Time       `json:"created_at"`
	Duration     time.Duration   `json:"duration"`
}

// FlowDescriptor is the public description of a registered flow.
type FlowDescriptor struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Modalities  []Modality `json:"modalities"`
	Input       *Shape     `json:"input"`
	Output      *Shape     `json:"output"`
}

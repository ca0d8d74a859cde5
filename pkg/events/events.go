// Package events defines event types published about flow invocations.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/museloop/genflow/pkg/models"
)

type EventType string

// Topic carries every invocation lifecycle event.
const Topic = "genflow.invocations"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	FlowInvocationSucceededEvent EventType = "flow.invocation.succeeded"
	FlowInvocationFailedEvent    EventType = "flow.invocation.failed"
)

type BaseEvent struct {
	ID           string         `json:"id"`
	Type         EventType      `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	Flow         string         `json:"flow"`
	InvocationID string         `json:"invocation_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// FlowInvocationSucceeded is published after an invocation returned a value.
type FlowInvocationSucceeded struct {
	BaseEvent

	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
}

func (e FlowInvocationSucceeded) GetType() EventType {
	return FlowInvocationSucceededEvent
}

// FlowInvocationFailed is published after the last attempt of an invocation failed.
type FlowInvocationFailed struct {
	BaseEvent

	Attempts   int                `json:"attempts"`
	Duration   time.Duration      `json:"duration"`
	ErrorKind  models.ErrorKind   `json:"error_kind"`
	Reason     string             `json:"reason,omitempty"`
	Error      string             `json:"error"`
	Violations []models.Violation `json:"violations,omitempty"`
	Retryable  bool               `json:"retryable"`
}

func (e FlowInvocationFailed) GetType() EventType {
	return FlowInvocationFailedEvent
}

func NewBaseEvent(eventType EventType, flow, invocationID string) BaseEvent {
	return BaseEvent{
		ID:           uuid.New().String(),
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		Flow:         flow,
		InvocationID: invocationID,
		Metadata:     make(map[string]any),
	}
}

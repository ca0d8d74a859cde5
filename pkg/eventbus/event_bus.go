// Package eventbus publishes and consumes flow invocation events.
package eventbus

import (
	"context"

	"github.com/museloop/genflow/pkg/events"
)

// Event is anything carrying one of the invocation event types.
type Event interface {
	GetType() events.EventType
}

// EventPublisher is the half used by the generation service.
type EventPublisher interface {
	// Publish sends the event with key as its partition key, usually the invocation ID.
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber is the half used by consumers such as `genflow events tail`.
// Handlers are registered before Subscribe; events without a handler are acked and dropped.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a pointer to the decoded event. A returned error nacks it.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/museloop/genflow/pkg/eventbus"
	"github.com/museloop/genflow/pkg/events"
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/otelhelper"
	"github.com/museloop/genflow/pkg/persistence"
	"github.com/museloop/genflow/pkg/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RetryObserver is told about every retried attempt.
type RetryObserver interface {
	ObserveRetry(flow, reason string)
}

// Generation invokes registered flows on behalf of API and CLI callers. It
// retries GenerationFailed attempts, keeps a record of every invocation and
// publishes the outcome.
type Generation struct {
	registry    *registry.Registry
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	retries     RetryObserver
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
	tracer      trace.Tracer
}

type Option func(*Generation)

func WithEventPublisher(publisher eventbus.EventPublisher) Option {
	return func(g *Generation) {
		g.publisher = publisher
	}
}

func WithRetryObserver(observer RetryObserver) Option {
	return func(g *Generation) {
		g.retries = observer
	}
}

// WithMaxAttempts sets how many times a GenerationFailed invocation is tried in total.
func WithMaxAttempts(attempts int) Option {
	return func(g *Generation) {
		if attempts > 0 {
			g.maxAttempts = attempts
		}
	}
}

// WithBackoff sets the pause before the n-th retry to n times backoff.
func WithBackoff(backoff time.Duration) Option {
	return func(g *Generation) {
		g.backoff = backoff
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generation) {
		g.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(g *Generation) {
		g.tracer = tracer
	}
}

// NewGeneration creates a new generation service.
func NewGeneration(reg *registry.Registry, persistence persistence.Persistence, opts ...Option) *Generation {
	g := &Generation{
		registry:    reg,
		persistence: persistence,
		maxAttempts: 1,
		backoff:     500 * time.Millisecond,
		logger:      slog.Default(),
		tracer:      otelhelper.NoopTracer(),
	}

	for _, opt := range opts {
		opt(g)
	}

	g.logger = g.logger.With("module", "generation_service")

	return g
}

// InvokeResult describes an invocation made through the service.
type InvokeResult struct {
	InvocationID string          `json:"invocation_id"`
	Flow         string          `json:"flow"`
	Output       json.RawMessage `json:"output,omitempty"`
	Attempts     int             `json:"attempts"`
}

// Invoke runs the named flow. Once the flow is found the result is returned on
// failure too, so the caller can report the invocation id with the error.
func (g *Generation) Invoke(ctx context.Context, name string, input json.RawMessage) (*InvokeResult, error) {
	if _, err := g.registry.Lookup(name); err != nil {
		return nil, &ServiceError{Op: "Invoke", Code: "flow_not_found", Err: err}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invocation ID: %w", err)
	}

	result := &InvokeResult{InvocationID: id.String(), Flow: name}
	ctx = flow.WithInvocationID(ctx, result.InvocationID)

	ctx, span := otelhelper.StartSpan(ctx, g.tracer, "generation.invoke",
		attribute.String(otelhelper.FlowNameKey, name),
		attribute.String(otelhelper.RecordIDKey, result.InvocationID),
	)
	defer span.End()

	started := time.Now().UTC()

	result.Output, result.Attempts, err = g.attempt(ctx, name, input)

	span.SetAttributes(attribute.Int(otelhelper.AttemptKey, result.Attempts))

	if err != nil {
		otelhelper.SetError(span, err)
	}

	record := newRecord(result, input, err, started)
	g.save(ctx, record)
	g.publish(ctx, record, err)

	return result, err
}

func (g *Generation) attempt(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, int, error) {
	var (
		output json.RawMessage
		err    error
	)

	for attempt := 1; ; attempt++ {
		output, err = g.registry.Invoke(ctx, name, input)
		if err == nil || !models.IsRetryable(err) || attempt >= g.maxAttempts || ctx.Err() != nil {
			return output, attempt, err
		}

		reason := ""
		if flowErr, ok := models.AsFlowError(err); ok {
			reason = flowErr.Reason
		}

		invocationID, _ := flow.InvocationID(ctx)

		g.logger.WarnContext(ctx, "Retrying failed invocation",
			"flow", name,
			"invocation_id", invocationID,
			"attempt", attempt,
			"reason", reason,
		)

		if g.retries != nil {
			g.retries.ObserveRetry(name, reason)
		}

		select {
		case <-ctx.Done():
			return output, attempt, err
		case <-time.After(time.Duration(attempt) * g.backoff):
		}
	}
}

func newRecord(result *InvokeResult, input json.RawMessage, err error, started time.Time) *models.InvocationRecord {
	record := &models.InvocationRecord{
		ID:        result.InvocationID,
		Flow:      result.Flow,
		Outcome:   models.OutcomeSuccess,
		Input:     storedInput(input),
		Output:    result.Output,
		Attempts:  result.Attempts,
		CreatedAt: started,
		Duration:  time.Since(started),
	}

	if err == nil {
		return record
	}

	record.Outcome = models.OutcomeFailure
	record.Output = nil
	record.ErrorMessage = err.Error()

	if flowErr, ok := models.AsFlowError(err); ok {
		record.ErrorKind = flowErr.Kind
		record.ErrorReason = flowErr.Reason
		record.Violations = flowErr.Violations
	}

	return record
}

// storedInput keeps caller input that is not JSON as a JSON string.
func storedInput(input json.RawMessage) json.RawMessage {
	trimmed := strings.TrimSpace(string(input))
	if trimmed == "" {
		return nil
	}

	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}

	quoted, err := json.Marshal(trimmed)
	if err != nil {
		return nil
	}

	return quoted
}

func (g *Generation) save(ctx context.Context, record *models.InvocationRecord) {
	if g.persistence == nil {
		return
	}

	err := g.persistence.InvocationRepository().Save(ctx, record)
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to save invocation record", "invocation_id", record.ID, "error", err)
	}
}

func (g *Generation) publish(ctx context.Context, record *models.InvocationRecord, invokeErr error) {
	if g.publisher == nil {
		return
	}

	var event eventbus.Event

	if invokeErr == nil {
		event = &events.FlowInvocationSucceeded{
			BaseEvent: events.NewBaseEvent(events.FlowInvocationSucceededEvent, record.Flow, record.ID),
			Attempts:  record.Attempts,
			Duration:  record.Duration,
		}
	} else {
		event = &events.FlowInvocationFailed{
			BaseEvent:  events.NewBaseEvent(events.FlowInvocationFailedEvent, record.Flow, record.ID),
			Attempts:   record.Attempts,
			Duration:   record.Duration,
			ErrorKind:  record.ErrorKind,
			Reason:     record.ErrorReason,
			Error:      record.ErrorMessage,
			Violations: record.Violations,
			Retryable:  models.IsRetryable(invokeErr),
		}
	}

	err := g.publisher.Publish(ctx, record.ID, event)
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to publish invocation event", "invocation_id", record.ID, "error", err)
	}
}

// Render returns the prompt the named flow would send for input.
func (g *Generation) Render(name string, input json.RawMessage) (*models.RenderedPrompt, error) {
	prompt, err := g.registry.Render(name, input)
	if err != nil && registry.IsFlowNotFound(err) {
		return nil, &ServiceError{Op: "Render", Code: "flow_not_found", Err: err}
	}

	return prompt, err
}

// Flows describes every registered flow.
func (g *Generation) Flows() []models.FlowDescriptor {
	return g.registry.List()
}

// Flow describes one registered flow.
func (g *Generation) Flow(name string) (models.FlowDescriptor, error) {
	registered, err := g.registry.Lookup(name)
	if err != nil {
		return models.FlowDescriptor{}, &ServiceError{Op: "Flow", Code: "flow_not_found", Err: err}
	}

	return registered.Describe(), nil
}

// Invocation returns the record of one invocation.
func (g *Generation) Invocation(ctx context.Context, id string) (*models.InvocationRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewValidationError("Invocation", "invalid_id", "invocation ID cannot be empty")
	}

	record, err := g.persistence.InvocationRepository().GetByID(ctx, id)
	if err != nil {
		return nil, &ServiceError{Op: "Invocation", Code: "invocation_lookup", Err: err}
	}

	return record, nil
}

// Invocations lists recent invocation records, newest first. An empty flow lists every flow.
func (g *Generation) Invocations(ctx context.Context, name string, limit int) ([]*models.InvocationRecord, error) {
	if name != "" {
		if _, err := g.registry.Lookup(name); err != nil {
			return nil, &ServiceError{Op: "Invocations", Code: "flow_not_found", Err: err}
		}
	}

	records, err := g.persistence.InvocationRepository().ListByFlow(ctx, name, limit)
	if err != nil {
		return nil, &ServiceError{Op: "Invocations", Code: "invocation_list", Err: err}
	}

	return records, nil
}

// HealthCheck checks the health of the persistence layer.
func (g *Generation) HealthCheck(ctx context.Context) (string, bool) {
	if g.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := g.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

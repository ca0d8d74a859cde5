package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/otelhelper"
	"github.com/museloop/genflow/pkg/protocol"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Observer is notified once per finished invocation.
type Observer interface {
	ObserveInvocation(ctx context.Context, inv *models.Invocation)
}

// Orchestrator drives invocations through the pipeline. It holds no state
// that outlives an invocation and is safe for concurrent use.
type Orchestrator struct {
	backend   protocol.Backend
	logger    *slog.Logger
	tracer    trace.Tracer
	observers []Observer
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) {
		o.observers = append(o.observers, observer)
	}
}

// NewOrchestrator creates an orchestrator calling the given backend.
func NewOrchestrator(backend protocol.Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: backend,
		logger:  slog.Default(),
		tracer:  otelhelper.NoopTracer(),
	}

	for _, opt := range opts {
		opt(o)
	}

	o.logger = o.logger.With("module", "flow_orchestrator")

	return o
}

type invocationIDKey struct{}

// WithInvocationID makes the next invocation run under the given id, so
// callers can correlate their records with logs and traces.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey{}, id)
}

// InvocationID returns the id set by WithInvocationID.
func InvocationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(invocationIDKey{}).(string)

	return id, ok && id != ""
}

// run tracks one invocation through the state machine.
type run struct {
	inv    *models.Invocation
	logger *slog.Logger
	span   trace.Span
	o      *Orchestrator
}

func (o *Orchestrator) start(ctx context.Context, flowName string) (context.Context, *run) {
	id, ok := InvocationID(ctx)
	if !ok {
		id = uuid.New().String()
	}

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "flow.invoke",
		attribute.String(otelhelper.FlowNameKey, flowName),
		attribute.String(otelhelper.InvocationIDKey, id),
	)

	r := &run{
		inv: &models.Invocation{
			ID:        id,
			Flow:      flowName,
			History:   []models.InvocationState{models.StateCreated},
			StartedAt: time.Now(),
		},
		logger: o.logger.With("flow", flowName, "invocation_id", id),
		span:   span,
		o:      o,
	}

	r.logger.DebugContext(ctx, "Invocation created")

	return ctx, r
}

func (r *run) advance(ctx context.Context, state models.InvocationState) {
	r.inv.History = append(r.inv.History, state)
	r.span.AddEvent(string(state))
	r.logger.DebugContext(ctx, "Invocation advanced", "state", state)
}

// succeed completes the invocation with a result.
func (r *run) succeed(ctx context.Context) {
	r.inv.Outcome = models.OutcomeSuccess
	r.complete(ctx)

	r.logger.InfoContext(ctx, "Invocation completed",
		"backend_calls", r.inv.BackendCalls,
		"duration", r.inv.Duration,
	)
}

// fail completes the invocation with a flow error and returns it.
func (r *run) fail(ctx context.Context, err *models.FlowError) error {
	failure := *err
	failure.Flow = r.inv.Flow

	r.inv.Outcome = models.OutcomeFailure
	r.inv.ErrorKind = failure.Kind
	r.inv.Reason = failure.Reason

	otelhelper.SetError(r.span, &failure)
	r.complete(ctx)

	r.logger.WarnContext(ctx, "Invocation failed",
		"kind", failure.Kind,
		"reason", failure.Reason,
		"backend_calls", r.inv.BackendCalls,
		"error", failure.Error(),
	)

	return &failure
}

func (r *run) complete(ctx context.Context) {
	r.inv.History = append(r.inv.History, models.StateCompleted)
	r.inv.Duration = time.Since(r.inv.StartedAt)

	r.span.SetAttributes(attribute.Int("genflow.backend.calls", r.inv.BackendCalls))
	r.span.End()

	for _, observer := range r.o.observers {
		observer.ObserveInvocation(ctx, r.inv)
	}
}

package cmd

import (
	"context"
	"log/slog"

	"github.com/museloop/genflow/pkg/config"
	"github.com/museloop/genflow/pkg/eventbus"
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/metrics"
	"github.com/museloop/genflow/pkg/persistence"
	"github.com/museloop/genflow/pkg/protocol"
	"github.com/museloop/genflow/pkg/registry"
	"github.com/museloop/genflow/pkg/services"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Stack holds the components shared by the genflow binaries.
type Stack struct {
	Registry    *registry.Registry
	Generation  *services.Generation
	Persistence persistence.Persistence
	EventBus    eventbus.EventBus
	Metrics     *metrics.Collector

	logger *slog.Logger
}

// NewStack wires the backend, flows, persistence and event bus described by cfg.
func NewStack(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	tracer trace.Tracer,
	registerer prometheus.Registerer,
) (*Stack, error) {
	generator, err := NewBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return newStack(ctx, cfg, generator, logger, tracer, registerer)
}

func newStack(
	ctx context.Context,
	cfg *config.Config,
	generator protocol.Backend,
	logger *slog.Logger,
	tracer trace.Tracer,
	registerer prometheus.Registerer,
) (*Stack, error) {
	collector := metrics.NewCollector(registerer)

	orchestrator := flow.NewOrchestrator(
		generator,
		flow.WithLogger(logger),
		flow.WithTracer(tracer),
		flow.WithObserver(collector),
	)

	store, err := NewPersistence(ctx, logger, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	bus, err := NewEventBus(cfg.Events, logger)
	if err != nil {
		_ = store.Close(ctx)

		return nil, err
	}

	opts := []services.Option{
		services.WithRetryObserver(collector),
		services.WithMaxAttempts(cfg.Retry.MaxAttempts),
		services.WithBackoff(cfg.Retry.Backoff),
		services.WithLogger(logger),
		services.WithTracer(tracer),
	}
	if bus != nil {
		opts = append(opts, services.WithEventPublisher(bus))
	}

	reg := NewRegistry(logger, orchestrator)

	return &Stack{
		Registry:    reg,
		Generation:  services.NewGeneration(reg, store, opts...),
		Persistence: store,
		EventBus:    bus,
		Metrics:     collector,
		logger:      logger,
	}, nil
}

// Close releases the persistence and event bus.
func (s *Stack) Close(ctx context.Context) {
	err := s.Persistence.Close(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
	}

	if s.EventBus == nil {
		return
	}

	if err := s.EventBus.Close(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
	}
}

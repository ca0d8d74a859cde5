// Package registry keeps the set of flows a process serves. It is built once
// at start-up and passed by reference to whatever needs to invoke flows.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/protocol"
)

var (
	ErrFlowNotFound          = errors.New("flow not found")
	ErrFlowAlreadyRegistered = errors.New("flow already registered")
)

type Registry struct {
	logger *slog.Logger
	mu     sync.RWMutex
	flows  map[string]protocol.Flow
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger: log.With("module", "registry"),
		flows:  make(map[string]protocol.Flow),
	}
}

// Register adds a flow. Names are unique.
func (r *Registry) Register(flow protocol.Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := flow.Name()
	if _, ok := r.flows[name]; ok {
		return fmt.Errorf("%w: %s", ErrFlowAlreadyRegistered, name)
	}

	r.flows[name] = flow
	r.logger.Debug("Registered flow", "flow", name)

	return nil
}

// Lookup returns the flow registered under name.
func (r *Registry) Lookup(name string) (protocol.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flow, ok := r.flows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, name)
	}

	return flow, nil
}

// Names returns the registered flow names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.flows))
	for name := range r.flows {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// List returns the descriptors of all registered flows ordered by name.
func (r *Registry) List() []models.FlowDescriptor {
	names := r.Names()
	descriptors := make([]models.FlowDescriptor, 0, len(names))

	for _, name := range names {
		flow, err := r.Lookup(name)
		if err != nil {
			continue
		}

		descriptors = append(descriptors, flow.Describe())
	}

	return descriptors
}

// Invoke runs the named flow against a JSON input.
func (r *Registry) Invoke(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, error) {
	flow, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	return flow.InvokeJSON(ctx, input)
}

// Render renders the prompt of the named flow without invoking the backend.
func (r *Registry) Render(name string, input json.RawMessage) (*models.RenderedPrompt, error) {
	flow, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	return flow.RenderJSON(input)
}

func IsFlowNotFound(err error) bool {
	return errors.Is(err, ErrFlowNotFound)
}

// HealthCheck reports whether any flow is registered.
func (r *Registry) HealthCheck() (string, bool) {
	count := len(r.Names())
	if count == 0 {
		return "No flows registered", false
	}

	return fmt.Sprintf("%d flows registered", count), true
}

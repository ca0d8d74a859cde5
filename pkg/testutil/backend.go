// Package testutil provides test backends and registries for testing.
package testutil

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/flows"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/registry"
	"github.com/stretchr/testify/require"
)

// Step is one scripted backend reply.
type Step struct {
	Response *models.GenerationResponse
	Err      error
}

// ScriptedBackend replies with its steps in order and repeats the last one.
type ScriptedBackend struct {
	mu       sync.Mutex
	steps    []Step
	requests []*models.GenerationRequest
}

func NewScriptedBackend(steps ...Step) *ScriptedBackend {
	return &ScriptedBackend{steps: steps}
}

// JSONReply is a step answering with a structured payload.
func JSONReply(data string) Step {
	return Step{Response: &models.GenerationResponse{Text: data, Data: json.RawMessage(data)}}
}

// Failure is a step answering with err.
func Failure(err error) Step {
	return Step{Err: err}
}

func (b *ScriptedBackend) Generate(_ context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, req)

	if len(b.steps) == 0 {
		return nil, models.NewGenerationFailed(models.ReasonEmptyResponse, "no scripted reply", nil)
	}

	index := min(len(b.requests), len(b.steps)) - 1
	step := b.steps[index]

	return step.Response, step.Err
}

// Requests returns the requests received so far.
func (b *ScriptedBackend) Requests() []*models.GenerationRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]*models.GenerationRequest(nil), b.requests...)
}

// Registry returns a registry with every built-in flow bound to backend.
func Registry(t *testing.T, backend *ScriptedBackend, opts ...flow.Option) *registry.Registry {
	t.Helper()

	reg := registry.NewRegistry(slog.Default())
	require.NoError(t, flows.RegisterDefaults(reg, flow.NewOrchestrator(backend, opts...)))

	return reg
}

// Package protocol defines the interfaces and contracts between the pipeline and its collaborators.
package protocol

import (
	"context"

	"github.com/museloop/genflow/pkg/models"
)

// Backend turns one GenerationRequest into one complete GenerationResponse.
//
// Implementations must never return an empty success in place of a backend
// error: safety refusals surface as models.ErrContentFiltered and every other
// failure (quota, timeout, transport) as models.ErrGenerationFailed.
type Backend interface {
	Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error)

func (f BackendFunc) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error) {
	return f(ctx, req)
}

// Committer is implemented by backends that keep responses for later calls.
// The orchestrator commits a response only after it passed the output shape
// and every invariant, so rejected responses are never replayed.
type Committer interface {
	Commit(ctx context.Context, req *models.GenerationRequest, resp *models.GenerationResponse)
}

package protocol

import (
	"context"
	"encoding/json"

	"github.com/museloop/genflow/pkg/models"
)

// Flow is a registered, type-erased flow bound to an orchestrator.
type Flow interface {
	// Name returns the unique flow name used for lookup.
	Name() string

	// Describe returns the flow's public descriptor, including its shapes.
	Describe() models.FlowDescriptor

	// InvokeJSON runs the pipeline for a JSON input and returns the JSON output.
	// Failures are *models.FlowError values.
	InvokeJSON(ctx context.Context, input json.RawMessage) (json.RawMessage, error)

	// RenderJSON validates a JSON input and renders the prompt without calling the backend.
	RenderJSON(input json.RawMessage) (*models.RenderedPrompt, error)
}

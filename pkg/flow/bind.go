package flow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/protocol"
)

type boundFlow[In, Out any] struct {
	orchestrator *Orchestrator
	definition   *Definition[In, Out]
}

// Bind erases the input and output types of a definition so it can be stored
// in a registry and invoked with JSON documents.
func Bind[In, Out any](o *Orchestrator, def *Definition[In, Out]) (protocol.Flow, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &boundFlow[In, Out]{orchestrator: o, definition: def}, nil
}

func (b *boundFlow[In, Out]) Name() string {
	return b.definition.Name
}

func (b *boundFlow[In, Out]) Describe() models.FlowDescriptor {
	return b.definition.Describe()
}

func (b *boundFlow[In, Out]) InvokeJSON(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	out, err := InvokeJSON(ctx, b.orchestrator, b.definition, input)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s output: %w", b.definition.Name, err)
	}

	return data, nil
}

func (b *boundFlow[In, Out]) RenderJSON(input json.RawMessage) (*models.RenderedPrompt, error) {
	in, flowErr := decodeInput[In](b.definition.Input, input)
	if flowErr != nil {
		return nil, withFlow(b.definition.Name, flowErr)
	}

	return Render(b.definition, *in)
}

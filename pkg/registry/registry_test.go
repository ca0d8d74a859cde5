package registry

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/museloop/genflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFlow struct {
	name   string
	output json.RawMessage
}

func (s *stubFlow) Name() string {
	return s.name
}

func (s *stubFlow) Describe() models.FlowDescriptor {
	return models.FlowDescriptor{Name: s.name}
}

func (s *stubFlow) InvokeJSON(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	return s.output, nil
}

func (s *stubFlow) RenderJSON(input json.RawMessage) (*models.RenderedPrompt, error) {
	return &models.RenderedPrompt{Text: s.name + ":" + string(input)}, nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry(slog.Default())

	require.NoError(t, r.Register(&stubFlow{name: "visual-search"}))
	require.NoError(t, r.Register(&stubFlow{name: "asset-tagging"}))

	err := r.Register(&stubFlow{name: "visual-search"})
	assert.ErrorIs(t, err, ErrFlowAlreadyRegistered)

	flow, err := r.Lookup("asset-tagging")
	require.NoError(t, err)
	assert.Equal(t, "asset-tagging", flow.Name())

	_, err = r.Lookup("missing")
	assert.True(t, IsFlowNotFound(err))

	assert.Equal(t, []string{"asset-tagging", "visual-search"}, r.Names())

	descriptors := r.List()
	require.Len(t, descriptors, 2)
	assert.Equal(t, "asset-tagging", descriptors[0].Name)
}

func TestRegistry_InvokeAndRender(t *testing.T) {
	r := NewRegistry(slog.Default())
	require.NoError(t, r.Register(&stubFlow{name: "dj-commentary", output: json.RawMessage(`{"commentary":"hi"}`)}))

	out, err := r.Invoke(context.Background(), "dj-commentary", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"commentary":"hi"}`, string(out))

	prompt, err := r.Render("dj-commentary", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "dj-commentary:{}", prompt.Text)

	_, err = r.Invoke(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrFlowNotFound)

	_, err = r.Render("nope", nil)
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestRegistry_HealthCheck(t *testing.T) {
	r := NewRegistry(slog.Default())

	message, ok := r.HealthCheck()
	assert.False(t, ok)
	assert.Equal(t, "No flows registered", message)

	require.NoError(t, r.Register(&stubFlow{name: "creator-bio"}))

	message, ok = r.HealthCheck()
	assert.True(t, ok)
	assert.Equal(t, "1 flows registered", message)
}

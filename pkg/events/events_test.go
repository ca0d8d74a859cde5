package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/museloop/genflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	base := NewBaseEvent(FlowInvocationSucceededEvent, "creator-bio", "inv-1")

	assert.NotEmpty(t, base.ID)
	assert.Equal(t, FlowInvocationSucceededEvent, base.Type)
	assert.Equal(t, "creator-bio", base.Flow)
	assert.Equal(t, "inv-1", base.InvocationID)
	assert.WithinDuration(t, time.Now().UTC(), base.Timestamp, time.Second)
	assert.NotNil(t, base.Metadata)

	other := NewBaseEvent(FlowInvocationSucceededEvent, "creator-bio", "inv-1")
	assert.NotEqual(t, base.ID, other.ID)
}

func TestEvent_GetType(t *testing.T) {
	assert.Equal(t, FlowInvocationSucceededEvent, FlowInvocationSucceeded{}.GetType())
	assert.Equal(t, FlowInvocationFailedEvent, FlowInvocationFailed{}.GetType())
}

func TestFlowInvocationFailed_JSON(t *testing.T) {
	original := &FlowInvocationFailed{
		BaseEvent:  NewBaseEvent(FlowInvocationFailedEvent, "portfolio-layout", "inv-9"),
		Attempts:   1,
		Duration:   2 * time.Second,
		ErrorKind:  models.ErrorKindIncompleteOutput,
		Error:      "portfolio-layout: incomplete_output",
		Violations: []models.Violation{{Field: "sections", Rule: "required_section", Message: "missing contact"}},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "flow.invocation.failed", raw["type"])
	assert.Equal(t, "incomplete_output", raw["error_kind"])
	assert.Equal(t, "inv-9", raw["invocation_id"])
	assert.NotContains(t, raw, "reason")

	var decoded FlowInvocationFailed
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.Violations, decoded.Violations)
	assert.Equal(t, original.Duration, decoded.Duration)
	assert.False(t, decoded.Retryable)
}

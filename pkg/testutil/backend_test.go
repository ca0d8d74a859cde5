package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/museloop/genflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedBackend_RepeatsLastStep(t *testing.T) {
	boom := errors.New("boom")
	backend := NewScriptedBackend(Failure(boom), JSONReply(`{"ok":true}`))

	_, err := backend.Generate(context.Background(), &models.GenerationRequest{Flow: "a"})
	assert.ErrorIs(t, err, boom)

	for range 2 {
		resp, err := backend.Generate(context.Background(), &models.GenerationRequest{Flow: "a"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(resp.Data))
	}

	assert.Len(t, backend.Requests(), 3)
}

func TestScriptedBackend_NoSteps(t *testing.T) {
	_, err := NewScriptedBackend().Generate(context.Background(), &models.GenerationRequest{})
	assert.True(t, models.IsRetryable(err))
}

func TestRegistry(t *testing.T) {
	reg := Registry(t, NewScriptedBackend())
	assert.Len(t, reg.Names(), 14)
}

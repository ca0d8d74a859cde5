package persistence_test

import (
	"errors"
	"testing"

	"github.com/museloop/genflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		err := persistence.NewInvocationError("GetByID", "inv-123", persistence.ErrInvocationNotFound)

		assert.True(t, persistence.IsInvocationNotFound(err))
		assert.True(t, errors.Is(err, persistence.ErrInvocationNotFound))
		assert.False(t, errors.Is(err, persistence.ErrInvalidRecord))
	})

	t.Run("invocation error contains context", func(t *testing.T) {
		err := persistence.NewInvocationError("Save", "inv-123", persistence.ErrInvalidRecord)

		assert.Contains(t, err.Error(), "Save")
		assert.Contains(t, err.Error(), "inv-123")
		assert.Contains(t, err.Error(), "invalid invocation record")
	})
}

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, persistence.DefaultListLimit, persistence.NormalizeLimit(0))
	assert.Equal(t, 5, persistence.NormalizeLimit(5))
	assert.Equal(t, persistence.MaxListLimit, persistence.NormalizeLimit(1000))
}

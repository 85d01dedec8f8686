package trace

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCorrelationID(t *testing.T) {
	id := NewCorrelationID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	// Two IDs in a row must differ.
	assert.NotEqual(t, id, NewCorrelationID())
}

func TestWithCorrelationIDRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "corr-123")

	id, ok := IDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "corr-123", id)
}

func TestIDFromContextMissing(t *testing.T) {
	id, ok := IDFromContext(context.Background())
	assert.False(t, ok)
	assert.Empty(t, id)

	// Empty string counts as absent.
	ctx := WithCorrelationID(context.Background(), "")
	_, ok = IDFromContext(ctx)
	assert.False(t, ok)
}

func TestEnsureCorrelationID(t *testing.T) {
	t.Run("returns existing", func(t *testing.T) {
		ctx := WithCorrelationID(context.Background(), "existing")
		assert.Equal(t, "existing", EnsureCorrelationID(ctx))
	})

	t.Run("generates when absent", func(t *testing.T) {
		id := EnsureCorrelationID(context.Background())
		_, err := uuid.Parse(id)
		require.NoError(t, err)
	})
}

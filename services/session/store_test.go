package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryTokenStore()
	ctx := context.Background()

	// Missing keys are empty, not errors.
	val, err := store.Get(ctx, UserTokenKey)
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, store.Set(ctx, UserTokenKey, "tok-1"))
	require.NoError(t, store.Set(ctx, FCMTokenKey, "device-1"))

	val, err = store.Get(ctx, UserTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", val)

	require.NoError(t, store.Remove(ctx, UserTokenKey))
	val, err = store.Get(ctx, UserTokenKey)
	require.NoError(t, err)
	assert.Empty(t, val)

	// Removing one key leaves the other.
	val, err = store.Get(ctx, FCMTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "device-1", val)
}

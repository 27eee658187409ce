package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kv-shepherd.io/shepherd/internal/token"
)

func TestMemoryRevocationStore_RevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	store := token.NewMemoryRevocationStore()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestMemoryRevocationStore_PrunesExpiredEntries(t *testing.T) {
	ctx := context.Background()
	store := token.NewMemoryRevocationStore()

	require.NoError(t, store.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))

	revoked, err := store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, revoked)
}

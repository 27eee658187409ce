package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kv-shepherd.io/shepherd/internal/domain"
	"kv-shepherd.io/shepherd/internal/token"
)

func newIssuer() *token.Issuer {
	return token.NewIssuer(token.Config{
		SigningKey: []byte("test-signing-key-test-signing-key"),
		Issuer:     "voting-service-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, token.NewMemoryRevocationStore())
}

func TestIssueAndDecode(t *testing.T) {
	ctx := context.Background()
	iss := newIssuer()

	access, refresh, err := iss.Issue("alice", domain.RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	name, role, err := iss.Decode(ctx, access)
	require.NoError(t, err)
	require.Equal(t, "alice", name)
	require.Equal(t, domain.RoleUser, role)
}

func TestDecodeRejectsRefreshToken(t *testing.T) {
	ctx := context.Background()
	iss := newIssuer()

	_, refresh, err := iss.Issue("alice", domain.RoleUser)
	require.NoError(t, err)

	_, _, err = iss.Decode(ctx, refresh)
	require.ErrorIs(t, err, token.ErrWrongKind)
}

func TestRefreshRotatesAndRevokesOldToken(t *testing.T) {
	ctx := context.Background()
	iss := newIssuer()

	_, refresh, err := iss.Issue("alice", domain.RoleAdmin)
	require.NoError(t, err)

	newAccess, newRefresh, err := iss.Refresh(ctx, refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEqual(t, refresh, newRefresh)

	_, _, err = iss.Refresh(ctx, refresh)
	require.ErrorIs(t, err, token.ErrRevoked)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	iss := newIssuer()
	_, _, err := iss.Decode(context.Background(), "not-a-jwt")
	require.Error(t, err)
}

func TestDecodeRejectsWrongSigningKey(t *testing.T) {
	ctx := context.Background()
	iss := newIssuer()
	other := token.NewIssuer(token.Config{
		SigningKey: []byte("a-completely-different-signing-key"),
		Issuer:     "voting-service-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, token.NewMemoryRevocationStore())

	access, _, err := iss.Issue("alice", domain.RoleUser)
	require.NoError(t, err)

	_, _, err = other.Decode(ctx, access)
	require.Error(t, err)
}

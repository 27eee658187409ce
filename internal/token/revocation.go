package token

import (
	"context"
	"sync"
	"time"
)

// MemoryRevocationStore is an in-process RevocationStore: a revoked-jti
// set with lazy expiry sweep on read. Bootstrap uses it for every
// storage backend, so revocations are held in process memory only and
// do not survive a process restart.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time // jti -> original token expiry
}

// NewMemoryRevocationStore returns an empty MemoryRevocationStore.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{revoked: make(map[string]time.Time)}
}

// IsRevoked reports whether jti was revoked and has not yet reached its
// original expiry (past that point the token is unusable anyway and
// the entry is pruned).
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}

// Revoke marks jti as revoked until expiresAt.
func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = expiresAt
	return nil
}

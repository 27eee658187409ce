package memory

import (
	"context"

	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
	"kv-shepherd.io/shepherd/internal/storage"
)

// Apply dispatches env.Event to the shared storage.ApplyEvent switch,
// which calls back into this Store's Mutator methods.
func (s *Store) Apply(ctx context.Context, env domain.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.ApplyEvent(ctx, s, env.Event)
}

// LastSynced returns the highest applied eventId.
func (s *Store) LastSynced(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSynced, nil
}

// SetLastSynced advances the cursor; refuses to move it backward.
func (s *Store) SetLastSynced(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < s.lastSynced {
		return apperrors.Internal(apperrors.CodeCursorRegressed, "lastSynced cursor may not move backward")
	}
	s.lastSynced = id
	return nil
}

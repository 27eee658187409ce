package memory

import (
	"context"
	"time"

	"kv-shepherd.io/shepherd/internal/domain"
)

// Append assigns the next gap-free eventId under the write lock.
func (s *Store) Append(_ context.Context, authority string, whenOccurred time.Time, event domain.DomainEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := int64(len(s.events)) + 1
	s.events = append(s.events, domain.EventEnvelope{
		EventID:      id,
		Authority:    authority,
		WhenOccurred: whenOccurred,
		Event:        event,
	})
	return id, nil
}

// EventsAfter returns every envelope with EventID > cursor.
func (s *Store) EventsAfter(_ context.Context, cursor int64) ([]domain.EventEnvelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cursor < 0 || cursor > int64(len(s.events)) {
		cursor = int64(len(s.events))
	}
	out := make([]domain.EventEnvelope, len(s.events)-int(cursor))
	copy(out, s.events[cursor:])
	return out, nil
}

// Count returns the number of events persisted.
func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.events)), nil
}

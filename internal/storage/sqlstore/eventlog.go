package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
)

// Append inserts one envelope and returns its gap-free, strictly
// increasing event_id via the events.event_id BIGSERIAL.
func (s *Store) Append(ctx context.Context, authority string, whenOccurred time.Time, event domain.DomainEvent) (int64, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("marshal event: %w", err)
	}

	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO events (authority, when_occurred, event) VALUES ($1, $2, $3) RETURNING event_id`,
		authority, whenOccurred, payload,
	).Scan(&id)
	if err != nil {
		return 0, apperrors.Internal(apperrors.CodeStorageUnavailable, fmt.Sprintf("append event: %v", err))
	}
	return id, nil
}

// EventsAfter returns every envelope with event_id > cursor, ordered
// ascending.
func (s *Store) EventsAfter(ctx context.Context, cursor int64) ([]domain.EventEnvelope, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT event_id, authority, when_occurred, event FROM events WHERE event_id > $1 ORDER BY event_id ASC`,
		cursor,
	)
	if err != nil {
		return nil, fmt.Errorf("query events after %d: %w", cursor, err)
	}
	defer rows.Close()

	var out []domain.EventEnvelope
	for rows.Next() {
		var env domain.EventEnvelope
		var payload []byte
		if err := rows.Scan(&env.EventID, &env.Authority, &env.WhenOccurred, &payload); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if err := json.Unmarshal(payload, &env.Event); err != nil {
			return nil, apperrors.Internal(apperrors.CodeUnknownEventType, fmt.Sprintf("decode event %d: %v", env.EventID, err))
		}
		out = append(out, env)
	}
	return out, rows.Err()
}

// Count returns the total number of persisted events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

package widecolumn

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
)

// Append assigns the next eventId via INCR (atomic, gap-free) and
// records the envelope in the event-data hash plus the order zset
// used for range scans.
func (s *Store) Append(ctx context.Context, authority string, whenOccurred time.Time, event domain.DomainEvent) (int64, error) {
	id, err := s.rdb.Incr(ctx, keyEventSeq).Result()
	if err != nil {
		return 0, apperrors.Internal(apperrors.CodeStorageUnavailable, fmt.Sprintf("allocate event id: %v", err))
	}

	env := domain.EventEnvelope{EventID: id, Authority: authority, WhenOccurred: whenOccurred, Event: event}
	payload, err := json.Marshal(env)
	if err != nil {
		return 0, fmt.Errorf("marshal envelope: %w", err)
	}

	idKey := strconv.FormatInt(id, 10)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, keyEventData, idKey, payload)
		pipe.ZAdd(ctx, keyEventOrder, redis.Z{Score: float64(id), Member: idKey})
		return nil
	})
	if err != nil {
		return 0, apperrors.Internal(apperrors.CodeStorageUnavailable, fmt.Sprintf("append event %d: %v", id, err))
	}
	return id, nil
}

// EventsAfter returns every envelope with EventID > cursor, in
// ascending order.
func (s *Store) EventsAfter(ctx context.Context, cursor int64) ([]domain.EventEnvelope, error) {
	ids, err := s.rdb.ZRangeByScore(ctx, keyEventOrder, &redis.ZRangeBy{
		Min: fmt.Sprintf("(%d", cursor),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("scan event order: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	payloads, err := s.rdb.HMGet(ctx, keyEventData, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch event payloads: %w", err)
	}

	out := make([]domain.EventEnvelope, 0, len(payloads))
	for i, raw := range payloads {
		str, ok := raw.(string)
		if !ok {
			return nil, apperrors.Internal(apperrors.CodeUnknownEventType, fmt.Sprintf("missing event payload for id %s", ids[i]))
		}
		var env domain.EventEnvelope
		if err := json.Unmarshal([]byte(str), &env); err != nil {
			return nil, apperrors.Internal(apperrors.CodeUnknownEventType, fmt.Sprintf("decode event %s: %v", ids[i], err))
		}
		out = append(out, env)
	}
	return out, nil
}

// Count returns the total number of persisted events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.rdb.ZCard(ctx, keyEventOrder).Result()
}

package widecolumn

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
	"kv-shepherd.io/shepherd/internal/storage"
)

// Apply dispatches to this Store's own Mutator methods; each method
// pipelines its own cascade internally rather than opening a
// surrounding transaction, since Redis transactions cannot span the
// read-then-write control flow several mutators need (e.g. RenameUser
// reading the old hash entry before writing the new key).
func (s *Store) Apply(ctx context.Context, env domain.EventEnvelope) error {
	return storage.ApplyEvent(ctx, s, env.Event)
}

// LastSynced returns the highest applied event id.
func (s *Store) LastSynced(ctx context.Context) (int64, error) {
	val, err := s.rdb.Get(ctx, keySyncCursor).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// SetLastSynced advances the cursor; rejects any backward move.
func (s *Store) SetLastSynced(ctx context.Context, id int64) error {
	current, err := s.LastSynced(ctx)
	if err != nil {
		return err
	}
	if id < current {
		return apperrors.Internal(apperrors.CodeCursorRegressed, fmt.Sprintf("cursor regression: %d < %d", id, current))
	}
	return s.rdb.Set(ctx, keySyncCursor, id, 0).Err()
}

package sqlstore

import (
	"context"
	"fmt"

	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
	"kv-shepherd.io/shepherd/internal/storage"
)

// Apply runs one event's effect inside its own transaction: the
// Mutator it hands to storage.ApplyEvent is scoped to that
// transaction, so a failure midway through a cascading effect (e.g.
// DeleteElection's candidate/voter/ballot cascade) leaves no partial
// state (mirrors the teacher's ApprovalAtomicWriter pgx.Tx pattern).
func (s *Store) Apply(ctx context.Context, env domain.EventEnvelope) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperrors.Internal(apperrors.CodeStorageUnavailable, fmt.Sprintf("begin apply tx: %v", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	m := &txMutator{db: tx}
	if err := storage.ApplyEvent(ctx, m, env.Event); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Internal(apperrors.CodeStorageUnavailable, fmt.Sprintf("commit apply tx: %v", err))
	}
	return nil
}

// LastSynced returns the highest applied event id.
func (s *Store) LastSynced(ctx context.Context) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT last_synced FROM sync_cursor WHERE id = TRUE`).Scan(&id)
	return id, err
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
	_, err = s.pool.Exec(ctx, `UPDATE sync_cursor SET last_synced = $1 WHERE id = TRUE`, id)
	return err
}

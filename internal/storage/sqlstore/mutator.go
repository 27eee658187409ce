package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
)

// txMutator implements storage.Mutator against whatever dbtx it is
// handed — always a pgx.Tx, since CommandModel.Apply opens one per
// event (see commandmodel.go).
type txMutator struct {
	db dbtx
}

func (m *txMutator) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := m.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (m *txMutator) InsertUser(ctx context.Context, u domain.User) error {
	_, err := m.db.Exec(ctx,
		`INSERT INTO users (name, email, salt, hash, role) VALUES ($1, $2, $3, $4, $5)`,
		u.Name, u.Email, u.Salt, u.Hash, u.Role,
	)
	return err
}

func (m *txMutator) UpdateUserRole(ctx context.Context, name string, role domain.Role) error {
	tag, err := m.db.Exec(ctx, `UPDATE users SET role = $1 WHERE name = $2`, role, name)
	if err != nil {
		return err
	}
	return requireRow(tag, apperrors.CodeUserNotFound, "role change applied to unknown user "+name)
}

func (m *txMutator) UpdateUserPassword(ctx context.Context, name, salt, hash string) error {
	tag, err := m.db.Exec(ctx, `UPDATE users SET salt = $1, hash = $2 WHERE name = $3`, salt, hash, name)
	if err != nil {
		return err
	}
	return requireRow(tag, apperrors.CodeUserNotFound, "password change applied to unknown user "+name)
}

func (m *txMutator) UpdateUserEmail(ctx context.Context, name, email string) error {
	tag, err := m.db.Exec(ctx, `UPDATE users SET email = $1 WHERE name = $2`, email, name)
	if err != nil {
		return err
	}
	return requireRow(tag, apperrors.CodeUserNotFound, "email change applied to unknown user "+name)
}

// RenameUser moves a user to a new natural key and cascades the rename
// across every foreign-key-by-name reference, relying on ON UPDATE
// CASCADE-free explicit updates so the rename stays inside this
// event's transaction boundary like every other mutation.
func (m *txMutator) RenameUser(ctx context.Context, oldName, newName string) error {
	tag, err := m.db.Exec(ctx, `UPDATE users SET name = $1 WHERE name = $2`, newName, oldName)
	if err != nil {
		return err
	}
	if err := requireRow(tag, apperrors.CodeUserNotFound, "rename applied to unknown user "+oldName); err != nil {
		return err
	}
	if _, err := m.db.Exec(ctx, `UPDATE elections SET owner_name = $1 WHERE owner_name = $2`, newName, oldName); err != nil {
		return err
	}
	if _, err := m.db.Exec(ctx, `UPDATE eligible_voters SET voter_name = $1 WHERE voter_name = $2`, newName, oldName); err != nil {
		return err
	}
	if _, err := m.db.Exec(ctx, `UPDATE ballots SET voter_name = $1 WHERE voter_name = $2`, newName, oldName); err != nil {
		return err
	}
	return nil
}

// DeleteUser removes the user and cascades to every ballot cast BY the
// removed user (voter-side cascade only — spec.md §9 Open Questions #3).
func (m *txMutator) DeleteUser(ctx context.Context, name string) error {
	if _, err := m.db.Exec(ctx, `DELETE FROM ballots WHERE voter_name = $1`, name); err != nil {
		return err
	}
	if _, err := m.db.Exec(ctx, `DELETE FROM eligible_voters WHERE voter_name = $1`, name); err != nil {
		return err
	}
	_, err := m.db.Exec(ctx, `DELETE FROM users WHERE name = $1`, name)
	return err
}

func (m *txMutator) InsertElection(ctx context.Context, e domain.Election) error {
	_, err := m.db.Exec(ctx,
		`INSERT INTO elections (name, owner_name, secret_ballot, allow_vote, allow_edit, ever_launched)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.Name, e.OwnerName, e.SecretBallot, e.AllowVote, e.AllowEdit, e.EverLaunched,
	)
	return err
}

func (m *txMutator) UpdateElection(ctx context.Context, name string, patch domain.ElectionUpdated) error {
	tag, err := m.db.Exec(ctx, `
		UPDATE elections SET
			secret_ballot    = COALESCE($2, secret_ballot),
			allow_vote       = COALESCE($3, allow_vote),
			allow_edit       = COALESCE($4, allow_edit),
			ever_launched    = ever_launched OR COALESCE($3, FALSE),
			no_voting_before = CASE WHEN $5 THEN $6 ELSE no_voting_before END,
			no_voting_after  = CASE WHEN $7 THEN $8 ELSE no_voting_after END
		WHERE name = $1`,
		name, patch.SecretBallot, patch.AllowVote, patch.AllowEdit,
		patch.NoVotingBefore != nil && patch.NoVotingBefore.Set, optionalTimeValue(patch.NoVotingBefore),
		patch.NoVotingAfter != nil && patch.NoVotingAfter.Set, optionalTimeValue(patch.NoVotingAfter),
	)
	if err != nil {
		return err
	}
	return requireRow(tag, apperrors.CodeElectionNotFound, "update applied to unknown election "+name)
}

func optionalTimeValue(ot *domain.OptionalTime) *time.Time {
	if ot == nil {
		return nil
	}
	return ot.Value
}

func (m *txMutator) DeleteElection(ctx context.Context, name string) error {
	// candidates, eligible_voters and ballots cascade via FK ON DELETE CASCADE.
	_, err := m.db.Exec(ctx, `DELETE FROM elections WHERE name = $1`, name)
	return err
}

func (m *txMutator) AddCandidates(ctx context.Context, electionName string, names []string) error {
	for _, n := range names {
		if _, err := m.db.Exec(ctx,
			`INSERT INTO candidates (election_name, name) VALUES ($1, $2)
			 ON CONFLICT (election_name, name) DO NOTHING`,
			electionName, n,
		); err != nil {
			return err
		}
	}
	return nil
}

func (m *txMutator) RemoveCandidates(ctx context.Context, electionName string, names []string) error {
	_, err := m.db.Exec(ctx, `DELETE FROM candidates WHERE election_name = $1 AND name = ANY($2)`, electionName, names)
	return err
}

func (m *txMutator) AddVoters(ctx context.Context, electionName string, names []string) error {
	for _, n := range names {
		if _, err := m.db.Exec(ctx,
			`INSERT INTO eligible_voters (election_name, voter_name) VALUES ($1, $2)
			 ON CONFLICT (election_name, voter_name) DO NOTHING`,
			electionName, n,
		); err != nil {
			return err
		}
	}
	return nil
}

func (m *txMutator) RemoveVoters(ctx context.Context, electionName string, names []string) error {
	_, err := m.db.Exec(ctx, `DELETE FROM eligible_voters WHERE election_name = $1 AND voter_name = ANY($2)`, electionName, names)
	return err
}

// UpsertBallot inserts or replaces a ballot. On conflict when_cast is
// left untouched while confirmation and rankings take the new values;
// the Service re-sends the existing confirmation on a re-cast, which
// keeps it stable across edits (spec.md §4.5, §9 Open Questions).
func (m *txMutator) UpsertBallot(ctx context.Context, electionName, voterName, confirmation string, whenCast time.Time, rankings []domain.Ranking) error {
	payload, err := json.Marshal(rankings)
	if err != nil {
		return fmt.Errorf("marshal rankings: %w", err)
	}
	_, err = m.db.Exec(ctx, `
		INSERT INTO ballots (election_name, voter_name, confirmation, when_cast, rankings)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (election_name, voter_name) DO UPDATE SET
			confirmation = EXCLUDED.confirmation,
			rankings     = EXCLUDED.rankings`,
		electionName, voterName, confirmation, whenCast, payload,
	)
	return err
}

func (m *txMutator) SetBallotRankings(ctx context.Context, electionName, voterName string, rankings []domain.Ranking) error {
	payload, err := json.Marshal(rankings)
	if err != nil {
		return fmt.Errorf("marshal rankings: %w", err)
	}
	tag, err := m.db.Exec(ctx,
		`UPDATE ballots SET rankings = $1 WHERE election_name = $2 AND voter_name = $3`,
		payload, electionName, voterName,
	)
	if err != nil {
		return err
	}
	return requireRow(tag, apperrors.CodeBallotNotFound, "ranking change applied to unknown ballot")
}

func (m *txMutator) SetBallotTimestamp(ctx context.Context, electionName, voterName string, when time.Time) error {
	tag, err := m.db.Exec(ctx,
		`UPDATE ballots SET when_cast = $1 WHERE election_name = $2 AND voter_name = $3`,
		when, electionName, voterName,
	)
	if err != nil {
		return err
	}
	return requireRow(tag, apperrors.CodeBallotNotFound, "timestamp bump applied to unknown ballot")
}

func requireRow(tag pgx.CommandTag, code, message string) error {
	if tag.RowsAffected() == 0 {
		return apperrors.Internal(code, message)
	}
	return nil
}

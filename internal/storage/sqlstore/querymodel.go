package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kv-shepherd.io/shepherd/internal/authz"
	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
	"kv-shepherd.io/shepherd/internal/storage"
)

func (s *Store) FindUserByName(ctx context.Context, name string) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT name, email, salt, hash, role FROM users WHERE name = $1`, name,
	).Scan(&u.Name, &u.Email, &u.Salt, &u.Hash, &u.Role)
	if err == pgx.ErrNoRows {
		return nil, apperrors.NotFound(apperrors.CodeUserNotFound, "user "+name+" not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) SearchUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT name, email, salt, hash, role FROM users WHERE email = $1`, email,
	).Scan(&u.Name, &u.Email, &u.Salt, &u.Hash, &u.Role)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, email, salt, hash, role FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Name, &u.Email, &u.Salt, &u.Hash, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) UserCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (s *Store) SearchElectionByName(ctx context.Context, name string) (*domain.Election, error) {
	e, err := scanElection(s.pool.QueryRow(ctx,
		`SELECT name, owner_name, secret_ballot, allow_vote, allow_edit, no_voting_before, no_voting_after, ever_launched
		 FROM elections WHERE name = $1`, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) ListElections(ctx context.Context) ([]domain.Election, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, owner_name, secret_ballot, allow_vote, allow_edit, no_voting_before, no_voting_after, ever_launched
		FROM elections ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Election
	for rows.Next() {
		e, err := scanElectionRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *Store) ElectionCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM elections`).Scan(&n)
	return n, err
}

func (s *Store) ListCandidates(ctx context.Context, electionName string) ([]domain.Candidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT election_name, name FROM candidates WHERE election_name = $1 ORDER BY name ASC`, electionName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ElectionName, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CandidateCount(ctx context.Context, electionName string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates WHERE election_name = $1`, electionName).Scan(&n)
	return n, err
}

func (s *Store) ListVotersForElection(ctx context.Context, electionName string) ([]domain.EligibleVoter, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT election_name, voter_name FROM eligible_voters WHERE election_name = $1 ORDER BY voter_name ASC`, electionName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EligibleVoter
	for rows.Next() {
		var v domain.EligibleVoter
		if err := rows.Scan(&v.ElectionName, &v.VoterName); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) VoterCount(ctx context.Context, electionName string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM eligible_voters WHERE election_name = $1`, electionName).Scan(&n)
	return n, err
}

func (s *Store) SearchBallot(ctx context.Context, voterName, electionName string) (*domain.Ballot, error) {
	b, err := scanBallot(s.pool.QueryRow(ctx,
		`SELECT election_name, voter_name, confirmation, when_cast, rankings
		 FROM ballots WHERE election_name = $1 AND voter_name = $2`, electionName, voterName))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBallots returns every ballot cast in electionName, masked per
// viewerName and the election's secretBallot flag (spec §4.9).
func (s *Store) ListBallots(ctx context.Context, electionName, viewerName string) ([]storage.BallotView, error) {
	e, err := s.SearchElectionByName(ctx, electionName)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT election_name, voter_name, confirmation, when_cast, rankings
		 FROM ballots WHERE election_name = $1 ORDER BY voter_name ASC`, electionName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.BallotView
	for rows.Next() {
		b, err := scanBallotRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, storage.MaskBallot(*b, e.SecretBallot, e.OwnerName, viewerName))
	}
	return out, rows.Err()
}

func (s *Store) ListRankings(ctx context.Context, voterName, electionName string) ([]domain.Ranking, error) {
	b, err := s.SearchBallot(ctx, voterName, electionName)
	if err != nil || b == nil {
		return nil, err
	}
	return b.Rankings, nil
}

func (s *Store) RoleHasPermission(role domain.Role, permission authz.Permission) bool {
	return authz.RoleHasPermission(role, permission)
}

func (s *Store) ListPermissions(role domain.Role) []authz.Permission {
	return authz.ListPermissions(role)
}

func (s *Store) ListTables(_ context.Context) ([]string, error) {
	return []string{"users", "elections", "candidates", "eligible_voters", "ballots"}, nil
}

// TableData dumps a named table as loosely-typed rows, for the admin
// introspection endpoint (spec.md §6, SPEC_FULL.md §5).
func (s *Store) TableData(ctx context.Context, tableName string) ([]map[string]any, error) {
	var query string
	switch tableName {
	case "users":
		query = `SELECT name, email, role FROM users ORDER BY name`
	case "elections":
		query = `SELECT name, owner_name, allow_vote, allow_edit, ever_launched, secret_ballot FROM elections ORDER BY name`
	case "candidates":
		query = `SELECT election_name, name FROM candidates ORDER BY election_name, name`
	case "eligible_voters":
		query = `SELECT election_name, voter_name FROM eligible_voters ORDER BY election_name, voter_name`
	case "ballots":
		query = `SELECT election_name, voter_name, confirmation, when_cast FROM ballots ORDER BY election_name, voter_name`
	default:
		return nil, apperrors.NotFound(apperrors.CodeUnknownTable, "unknown table "+tableName)
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", tableName, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(fields))
		for i, f := range fields {
			row[string(f.Name)] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanElection(row pgx.Row) (*domain.Election, error) {
	var e domain.Election
	err := row.Scan(&e.Name, &e.OwnerName, &e.SecretBallot, &e.AllowVote, &e.AllowEdit,
		&e.NoVotingBefore, &e.NoVotingAfter, &e.EverLaunched)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanElectionRow(rows pgx.Rows) (*domain.Election, error) {
	var e domain.Election
	err := rows.Scan(&e.Name, &e.OwnerName, &e.SecretBallot, &e.AllowVote, &e.AllowEdit,
		&e.NoVotingBefore, &e.NoVotingAfter, &e.EverLaunched)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanBallot(row pgx.Row) (*domain.Ballot, error) {
	var b domain.Ballot
	var payload []byte
	if err := row.Scan(&b.ElectionName, &b.VoterName, &b.Confirmation, &b.WhenCast, &payload); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &b.Rankings); err != nil {
		return nil, fmt.Errorf("decode rankings: %w", err)
	}
	return &b, nil
}

func scanBallotRow(rows pgx.Rows) (*domain.Ballot, error) {
	var b domain.Ballot
	var payload []byte
	if err := rows.Scan(&b.ElectionName, &b.VoterName, &b.Confirmation, &b.WhenCast, &payload); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &b.Rankings); err != nil {
		return nil, fmt.Errorf("decode rankings: %w", err)
	}
	return &b, nil
}

package widecolumn

import (
	"context"
	"encoding/json"
	"sort"

	"kv-shepherd.io/shepherd/internal/authz"
	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
	"kv-shepherd.io/shepherd/internal/storage"
)

func (s *Store) FindUserByName(ctx context.Context, name string) (*domain.User, error) {
	u, err := s.getUser(ctx, name)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.NotFound(apperrors.CodeUserNotFound, "user "+name+" not found")
	}
	return u, nil
}

func (s *Store) SearchUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	raw, ok, err := s.getRow(ctx, partitionUsersByEmail, email)
	if err != nil || !ok {
		return nil, err
	}
	return s.getUser(ctx, string(raw))
}

// ListUsers performs a prefix scan over the entire "users" partition
// (an empty sort prefix matches every row in it).
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.scanPrefix(ctx, partitionUsers, "")
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, raw := range rows {
		var u domain.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UserCount(ctx context.Context) (int, error) {
	return s.CountUsers(ctx)
}

func (s *Store) SearchElectionByName(ctx context.Context, name string) (*domain.Election, error) {
	raw, ok, err := s.getRow(ctx, partitionElections, name)
	if err != nil || !ok {
		return nil, err
	}
	var e domain.Election
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) ListElections(ctx context.Context) ([]domain.Election, error) {
	rows, err := s.scanPrefix(ctx, partitionElections, "")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Election, 0, len(rows))
	for _, raw := range rows {
		var e domain.Election
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ElectionCount(ctx context.Context) (int, error) {
	return s.countPrefix(ctx, partitionElections, "")
}

// ListCandidates prefix-scans the "candidates" partition for
// electionName+sep, the per-election row range.
func (s *Store) ListCandidates(ctx context.Context, electionName string) ([]domain.Candidate, error) {
	rows, err := s.scanPrefix(ctx, partitionCandidates, electionName+sep)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Candidate, len(rows))
	for i, raw := range rows {
		out[i] = domain.Candidate{ElectionName: electionName, Name: string(raw)}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CandidateCount(ctx context.Context, electionName string) (int, error) {
	return s.countPrefix(ctx, partitionCandidates, electionName+sep)
}

// ListVotersForElection prefix-scans the "voters" partition for
// electionName+sep.
func (s *Store) ListVotersForElection(ctx context.Context, electionName string) ([]domain.EligibleVoter, error) {
	rows, err := s.scanPrefix(ctx, partitionVoters, electionName+sep)
	if err != nil {
		return nil, err
	}
	out := make([]domain.EligibleVoter, len(rows))
	for i, raw := range rows {
		out[i] = domain.EligibleVoter{ElectionName: electionName, VoterName: string(raw)}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoterName < out[j].VoterName })
	return out, nil
}

func (s *Store) VoterCount(ctx context.Context, electionName string) (int, error) {
	return s.countPrefix(ctx, partitionVoters, electionName+sep)
}

func (s *Store) SearchBallot(ctx context.Context, voterName, electionName string) (*domain.Ballot, error) {
	return s.getBallot(ctx, electionName, voterName)
}

// ListBallots prefix-scans the "ballots" partition for electionName+sep
// and masks each row per viewerName and the election's secretBallot
// flag (spec §4.9).
func (s *Store) ListBallots(ctx context.Context, electionName, viewerName string) ([]storage.BallotView, error) {
	e, err := s.SearchElectionByName(ctx, electionName)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}

	rows, err := s.scanPrefix(ctx, partitionBallots, electionName+sep)
	if err != nil {
		return nil, err
	}
	out := make([]storage.BallotView, 0, len(rows))
	for _, raw := range rows {
		var b domain.Ballot
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		out = append(out, storage.MaskBallot(b, e.SecretBallot, e.OwnerName, viewerName))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Masked != out[j].Masked {
			return !out[i].Masked
		}
		return out[i].VoterName < out[j].VoterName
	})
	return out, nil
}

func (s *Store) ListRankings(ctx context.Context, voterName, electionName string) ([]domain.Ranking, error) {
	b, err := s.getBallot(ctx, electionName, voterName)
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
// introspection endpoint (spec.md §6, SPEC_FULL.md §5). Each case is a
// prefix scan over the single data table's matching partition.
func (s *Store) TableData(ctx context.Context, tableName string) ([]map[string]any, error) {
	switch tableName {
	case "users":
		users, err := s.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(users))
		for _, u := range users {
			out = append(out, map[string]any{"name": u.Name, "email": u.Email, "role": u.Role})
		}
		return out, nil
	case "elections":
		elections, err := s.ListElections(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(elections))
		for _, e := range elections {
			out = append(out, map[string]any{
				"name": e.Name, "ownerName": e.OwnerName, "stage": string(e.Stage()),
				"secretBallot": e.SecretBallot, "allowVote": e.AllowVote, "allowEdit": e.AllowEdit,
			})
		}
		return out, nil
	case "candidates":
		elections, err := s.ListElections(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0)
		for _, e := range elections {
			cs, err := s.ListCandidates(ctx, e.Name)
			if err != nil {
				return nil, err
			}
			for _, c := range cs {
				out = append(out, map[string]any{"electionName": e.Name, "name": c.Name})
			}
		}
		return out, nil
	case "eligible_voters":
		elections, err := s.ListElections(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0)
		for _, e := range elections {
			vs, err := s.ListVotersForElection(ctx, e.Name)
			if err != nil {
				return nil, err
			}
			for _, v := range vs {
				out = append(out, map[string]any{"electionName": e.Name, "voterName": v.VoterName})
			}
		}
		return out, nil
	case "ballots":
		elections, err := s.ListElections(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0)
		for _, e := range elections {
			views, err := s.ListBallots(ctx, e.Name, e.OwnerName)
			if err != nil {
				return nil, err
			}
			for _, b := range views {
				out = append(out, map[string]any{
					"electionName": b.ElectionName, "voterName": b.VoterName,
					"confirmation": b.Confirmation, "whenCast": b.WhenCast,
				})
			}
		}
		return out, nil
	default:
		return nil, apperrors.NotFound(apperrors.CodeUnknownTable, "unknown table "+tableName)
	}
}

package memory

import (
	"context"
	"sort"

	"kv-shepherd.io/shepherd/internal/authz"
	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
	"kv-shepherd.io/shepherd/internal/storage"
)

func (s *Store) FindUserByName(_ context.Context, name string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[name]
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeUserNotFound, "user "+name+" not found")
	}
	return &u, nil
}

func (s *Store) SearchUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UserCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *Store) SearchElectionByName(_ context.Context, name string) (*domain.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elections[name]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *Store) ListElections(_ context.Context) ([]domain.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Election, 0, len(s.elections))
	for _, e := range s.elections {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ElectionCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elections), nil
}

func (s *Store) ListCandidates(_ context.Context, electionName string) ([]domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.candidates[electionName]
	out := make([]domain.Candidate, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CandidateCount(_ context.Context, electionName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates[electionName]), nil
}

func (s *Store) ListVotersForElection(_ context.Context, electionName string) ([]domain.EligibleVoter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.voters[electionName]
	out := make([]domain.EligibleVoter, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoterName < out[j].VoterName })
	return out, nil
}

func (s *Store) VoterCount(_ context.Context, electionName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.voters[electionName]), nil
}

func (s *Store) SearchBallot(_ context.Context, voterName, electionName string) (*domain.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.ballots[electionName]
	if !ok {
		return nil, nil
	}
	b, ok := m[voterName]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *Store) ListBallots(_ context.Context, electionName, viewerName string) ([]storage.BallotView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elections[electionName]
	if !ok {
		return nil, nil
	}
	m := s.ballots[electionName]
	out := make([]storage.BallotView, 0, len(m))
	for _, b := range m {
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

func (s *Store) ListRankings(_ context.Context, voterName, electionName string) ([]domain.Ranking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.ballots[electionName]
	if !ok {
		return nil, nil
	}
	b, ok := m[voterName]
	if !ok {
		return nil, nil
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
func (s *Store) TableData(_ context.Context, tableName string) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch tableName {
	case "users":
		out := make([]map[string]any, 0, len(s.users))
		for _, u := range s.users {
			out = append(out, map[string]any{"name": u.Name, "email": u.Email, "role": u.Role})
		}
		return out, nil
	case "elections":
		out := make([]map[string]any, 0, len(s.elections))
		for _, e := range s.elections {
			out = append(out, map[string]any{
				"name": e.Name, "ownerName": e.OwnerName, "stage": string(e.Stage()),
				"secretBallot": e.SecretBallot, "allowVote": e.AllowVote, "allowEdit": e.AllowEdit,
			})
		}
		return out, nil
	case "candidates":
		out := make([]map[string]any, 0)
		for election, m := range s.candidates {
			for _, c := range m {
				out = append(out, map[string]any{"electionName": election, "name": c.Name})
			}
		}
		return out, nil
	case "eligible_voters":
		out := make([]map[string]any, 0)
		for election, m := range s.voters {
			for _, v := range m {
				out = append(out, map[string]any{"electionName": election, "voterName": v.VoterName})
			}
		}
		return out, nil
	case "ballots":
		out := make([]map[string]any, 0)
		for election, m := range s.ballots {
			for _, b := range m {
				out = append(out, map[string]any{
					"electionName": election, "voterName": b.VoterName,
					"confirmation": b.Confirmation, "whenCast": b.WhenCast,
				})
			}
		}
		return out, nil
	default:
		return nil, apperrors.NotFound(apperrors.CodeUnknownTable, "unknown table "+tableName)
	}
}

package memory

import (
	"context"
	"time"

	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
)

// Mutator methods are called only from within Apply, already holding
// s.mu for writing; they must not lock again.

func (s *Store) CountUsers(_ context.Context) (int, error) {
	return len(s.users), nil
}

func (s *Store) InsertUser(_ context.Context, u domain.User) error {
	s.users[u.Name] = u
	return nil
}

func (s *Store) UpdateUserRole(_ context.Context, name string, role domain.Role) error {
	u, ok := s.users[name]
	if !ok {
		return apperrors.Internal(apperrors.CodeUserNotFound, "role change applied to unknown user "+name)
	}
	u.Role = role
	s.users[name] = u
	return nil
}

func (s *Store) UpdateUserPassword(_ context.Context, name, salt, hash string) error {
	u, ok := s.users[name]
	if !ok {
		return apperrors.Internal(apperrors.CodeUserNotFound, "password change applied to unknown user "+name)
	}
	u.Salt, u.Hash = salt, hash
	s.users[name] = u
	return nil
}

func (s *Store) UpdateUserEmail(_ context.Context, name, email string) error {
	u, ok := s.users[name]
	if !ok {
		return apperrors.Internal(apperrors.CodeUserNotFound, "email change applied to unknown user "+name)
	}
	u.Email = email
	s.users[name] = u
	return nil
}

// RenameUser moves a user to a new natural key and cascades the rename
// to every election ownership, voter-eligibility and ballot row that
// referenced the old name, since the name is the foreign key under a
// natural-key data model.
func (s *Store) RenameUser(_ context.Context, oldName, newName string) error {
	u, ok := s.users[oldName]
	if !ok {
		return apperrors.Internal(apperrors.CodeUserNotFound, "rename applied to unknown user "+oldName)
	}
	delete(s.users, oldName)
	u.Name = newName
	s.users[newName] = u

	for name, e := range s.elections {
		if e.OwnerName == oldName {
			e.OwnerName = newName
			s.elections[name] = e
		}
	}
	for _, voters := range s.voters {
		if v, ok := voters[oldName]; ok {
			delete(voters, oldName)
			v.VoterName = newName
			voters[newName] = v
		}
	}
	for _, ballots := range s.ballots {
		if b, ok := ballots[oldName]; ok {
			delete(ballots, oldName)
			b.VoterName = newName
			ballots[newName] = b
		}
	}
	return nil
}

// DeleteUser removes the user and cascades to every ballot cast BY the
// removed user (voter-side cascade only — spec.md §9 Open Questions #3).
func (s *Store) DeleteUser(_ context.Context, name string) error {
	delete(s.users, name)
	for _, ballots := range s.ballots {
		delete(ballots, name)
	}
	for _, voters := range s.voters {
		delete(voters, name)
	}
	return nil
}

func (s *Store) InsertElection(_ context.Context, e domain.Election) error {
	s.elections[e.Name] = e
	s.candidates[e.Name] = make(map[string]domain.Candidate)
	s.voters[e.Name] = make(map[string]domain.EligibleVoter)
	s.ballots[e.Name] = make(map[string]domain.Ballot)
	return nil
}

func (s *Store) UpdateElection(_ context.Context, name string, patch domain.ElectionUpdated) error {
	e, ok := s.elections[name]
	if !ok {
		return apperrors.Internal(apperrors.CodeElectionNotFound, "update applied to unknown election "+name)
	}
	if patch.SecretBallot != nil {
		e.SecretBallot = *patch.SecretBallot
	}
	if patch.AllowVote != nil {
		e.AllowVote = *patch.AllowVote
		if *patch.AllowVote {
			e.EverLaunched = true
		}
	}
	if patch.AllowEdit != nil {
		e.AllowEdit = *patch.AllowEdit
	}
	if patch.NoVotingBefore != nil && patch.NoVotingBefore.Set {
		e.NoVotingBefore = patch.NoVotingBefore.Value
	}
	if patch.NoVotingAfter != nil && patch.NoVotingAfter.Set {
		e.NoVotingAfter = patch.NoVotingAfter.Value
	}
	s.elections[name] = e
	return nil
}

func (s *Store) DeleteElection(_ context.Context, name string) error {
	delete(s.elections, name)
	delete(s.candidates, name)
	delete(s.voters, name)
	delete(s.ballots, name)
	return nil
}

func (s *Store) AddCandidates(_ context.Context, electionName string, names []string) error {
	m, ok := s.candidates[electionName]
	if !ok {
		m = make(map[string]domain.Candidate)
		s.candidates[electionName] = m
	}
	for _, n := range names {
		m[n] = domain.Candidate{ElectionName: electionName, Name: n}
	}
	return nil
}

func (s *Store) RemoveCandidates(_ context.Context, electionName string, names []string) error {
	m := s.candidates[electionName]
	for _, n := range names {
		delete(m, n)
	}
	// A removed candidate's rankings are left in place on any already
	// cast ballot: the tally engine treats unranked/removed candidates
	// as absent from a ballot, never erroring on a stale ranking.
	return nil
}

func (s *Store) AddVoters(_ context.Context, electionName string, names []string) error {
	m, ok := s.voters[electionName]
	if !ok {
		m = make(map[string]domain.EligibleVoter)
		s.voters[electionName] = m
	}
	for _, n := range names {
		m[n] = domain.EligibleVoter{ElectionName: electionName, VoterName: n}
	}
	return nil
}

func (s *Store) RemoveVoters(_ context.Context, electionName string, names []string) error {
	m := s.voters[electionName]
	for _, n := range names {
		delete(m, n)
	}
	return nil
}

// UpsertBallot inserts or replaces a ballot. whenCast is stamped only
// on first insert; a later upsert replaces confirmation and rankings
// (the Service re-sends the existing confirmation on a re-cast, which
// keeps it stable across edits — spec.md §4.5, §9 Open Questions).
func (s *Store) UpsertBallot(_ context.Context, electionName, voterName, confirmation string, whenCast time.Time, rankings []domain.Ranking) error {
	m, ok := s.ballots[electionName]
	if !ok {
		m = make(map[string]domain.Ballot)
		s.ballots[electionName] = m
	}
	if existing, found := m[voterName]; found {
		existing.Confirmation = confirmation
		existing.Rankings = rankings
		m[voterName] = existing
		return nil
	}
	m[voterName] = domain.Ballot{
		ElectionName: electionName,
		VoterName:    voterName,
		Confirmation: confirmation,
		WhenCast:     whenCast,
		Rankings:     rankings,
	}
	return nil
}

func (s *Store) SetBallotRankings(_ context.Context, electionName, voterName string, rankings []domain.Ranking) error {
	m := s.ballots[electionName]
	b, ok := m[voterName]
	if !ok {
		return apperrors.Internal(apperrors.CodeBallotNotFound, "ranking change applied to unknown ballot")
	}
	b.Rankings = rankings
	m[voterName] = b
	return nil
}

func (s *Store) SetBallotTimestamp(_ context.Context, electionName, voterName string, when time.Time) error {
	m := s.ballots[electionName]
	b, ok := m[voterName]
	if !ok {
		return apperrors.Internal(apperrors.CodeBallotNotFound, "timestamp bump applied to unknown ballot")
	}
	b.WhenCast = when
	m[voterName] = b
	return nil
}

package widecolumn

import (
	"context"
	"encoding/json"
	"time"

	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
)

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	return s.countPrefix(ctx, partitionUsers, "")
}

func (s *Store) InsertUser(ctx context.Context, u domain.User) error {
	if err := s.putUser(ctx, u); err != nil {
		return err
	}
	return s.putRow(ctx, partitionUsersByEmail, u.Email, []byte(u.Name))
}

func (s *Store) getUser(ctx context.Context, name string) (*domain.User, error) {
	raw, ok, err := s.getRow(ctx, partitionUsers, name)
	if err != nil || !ok {
		return nil, err
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) putUser(ctx context.Context, u domain.User) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.putRow(ctx, partitionUsers, u.Name, payload)
}

func (s *Store) UpdateUserRole(ctx context.Context, name string, role domain.Role) error {
	u, err := s.getUser(ctx, name)
	if err != nil {
		return err
	}
	if u == nil {
		return apperrors.Internal(apperrors.CodeUserNotFound, "role change applied to unknown user "+name)
	}
	u.Role = role
	return s.putUser(ctx, *u)
}

func (s *Store) UpdateUserPassword(ctx context.Context, name, salt, hash string) error {
	u, err := s.getUser(ctx, name)
	if err != nil {
		return err
	}
	if u == nil {
		return apperrors.Internal(apperrors.CodeUserNotFound, "password change applied to unknown user "+name)
	}
	u.Salt, u.Hash = salt, hash
	return s.putUser(ctx, *u)
}

func (s *Store) UpdateUserEmail(ctx context.Context, name, email string) error {
	u, err := s.getUser(ctx, name)
	if err != nil {
		return err
	}
	if u == nil {
		return apperrors.Internal(apperrors.CodeUserNotFound, "email change applied to unknown user "+name)
	}
	oldEmail := u.Email
	u.Email = email
	if err := s.putUser(ctx, *u); err != nil {
		return err
	}
	if err := s.deleteRow(ctx, partitionUsersByEmail, oldEmail); err != nil {
		return err
	}
	return s.putRow(ctx, partitionUsersByEmail, email, []byte(name))
}

// RenameUser moves a user to a new natural key and cascades the
// rename across every election ownership, voter-eligibility and
// ballot row that referenced the old name.
func (s *Store) RenameUser(ctx context.Context, oldName, newName string) error {
	u, err := s.getUser(ctx, oldName)
	if err != nil {
		return err
	}
	if u == nil {
		return apperrors.Internal(apperrors.CodeUserNotFound, "rename applied to unknown user "+oldName)
	}
	u.Name = newName

	if err := s.putUser(ctx, *u); err != nil {
		return err
	}
	if err := s.deleteRow(ctx, partitionUsers, oldName); err != nil {
		return err
	}
	if err := s.putRow(ctx, partitionUsersByEmail, u.Email, []byte(newName)); err != nil {
		return err
	}

	elections, err := s.ListElections(ctx)
	if err != nil {
		return err
	}
	for _, e := range elections {
		if e.OwnerName == oldName {
			e.OwnerName = newName
			if err := s.putElection(ctx, e); err != nil {
				return err
			}
		}
		if err := s.renameVoter(ctx, e.Name, oldName, newName); err != nil {
			return err
		}
		if b, err := s.getBallot(ctx, e.Name, oldName); err != nil {
			return err
		} else if b != nil {
			b.VoterName = newName
			if err := s.putBallot(ctx, *b); err != nil {
				return err
			}
			if err := s.deleteRow(ctx, partitionBallots, ballotSort(e.Name, oldName)); err != nil {
				return err
			}
		}
	}
	return nil
}

// renameVoter moves a voter-eligibility row to a new name within one
// election. A no-op if the old name was never a voter there.
func (s *Store) renameVoter(ctx context.Context, electionName, oldName, newName string) error {
	_, ok, err := s.getRow(ctx, partitionVoters, voterSort(electionName, oldName))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := s.deleteRow(ctx, partitionVoters, voterSort(electionName, oldName)); err != nil {
		return err
	}
	return s.putRow(ctx, partitionVoters, voterSort(electionName, newName), []byte(newName))
}

// DeleteUser removes the user and cascades to every ballot cast BY the
// removed user (voter-side cascade only — spec.md §9 Open Questions #3).
func (s *Store) DeleteUser(ctx context.Context, name string) error {
	u, err := s.getUser(ctx, name)
	if err != nil {
		return err
	}
	if u != nil {
		if err := s.deleteRow(ctx, partitionUsers, name); err != nil {
			return err
		}
		if err := s.deleteRow(ctx, partitionUsersByEmail, u.Email); err != nil {
			return err
		}
	}

	elections, err := s.ListElections(ctx)
	if err != nil {
		return err
	}
	for _, e := range elections {
		if err := s.deleteRow(ctx, partitionVoters, voterSort(e.Name, name)); err != nil {
			return err
		}
		if err := s.deleteRow(ctx, partitionBallots, ballotSort(e.Name, name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) putElection(ctx context.Context, e domain.Election) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.putRow(ctx, partitionElections, e.Name, payload)
}

func (s *Store) InsertElection(ctx context.Context, e domain.Election) error {
	return s.putElection(ctx, e)
}

func (s *Store) UpdateElection(ctx context.Context, name string, patch domain.ElectionUpdated) error {
	e, err := s.SearchElectionByName(ctx, name)
	if err != nil {
		return err
	}
	if e == nil {
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
	return s.putElection(ctx, *e)
}

func (s *Store) DeleteElection(ctx context.Context, name string) error {
	if err := s.deleteRow(ctx, partitionElections, name); err != nil {
		return err
	}
	candidates, err := s.ListCandidates(ctx, name)
	if err != nil {
		return err
	}
	for _, c := range candidates {
		if err := s.deleteRow(ctx, partitionCandidates, candidateSort(name, c.Name)); err != nil {
			return err
		}
	}
	voters, err := s.ListVotersForElection(ctx, name)
	if err != nil {
		return err
	}
	for _, v := range voters {
		if err := s.deleteRow(ctx, partitionVoters, voterSort(name, v.VoterName)); err != nil {
			return err
		}
	}
	rows, err := s.scanPrefix(ctx, partitionBallots, name+sep)
	if err != nil {
		return err
	}
	for _, raw := range rows {
		var b domain.Ballot
		if err := json.Unmarshal(raw, &b); err != nil {
			return err
		}
		if err := s.deleteRow(ctx, partitionBallots, ballotSort(name, b.VoterName)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AddCandidates(ctx context.Context, electionName string, names []string) error {
	for _, n := range names {
		if err := s.putRow(ctx, partitionCandidates, candidateSort(electionName, n), []byte(n)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) RemoveCandidates(ctx context.Context, electionName string, names []string) error {
	for _, n := range names {
		if err := s.deleteRow(ctx, partitionCandidates, candidateSort(electionName, n)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AddVoters(ctx context.Context, electionName string, names []string) error {
	for _, n := range names {
		if err := s.putRow(ctx, partitionVoters, voterSort(electionName, n), []byte(n)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) RemoveVoters(ctx context.Context, electionName string, names []string) error {
	for _, n := range names {
		if err := s.deleteRow(ctx, partitionVoters, voterSort(electionName, n)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) putBallot(ctx context.Context, b domain.Ballot) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return s.putRow(ctx, partitionBallots, ballotSort(b.ElectionName, b.VoterName), payload)
}

func (s *Store) getBallot(ctx context.Context, electionName, voterName string) (*domain.Ballot, error) {
	raw, ok, err := s.getRow(ctx, partitionBallots, ballotSort(electionName, voterName))
	if err != nil || !ok {
		return nil, err
	}
	var b domain.Ballot
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpsertBallot inserts or replaces a ballot. whenCast is kept from the
// first insert; a later upsert replaces confirmation and rankings (the
// Service re-sends the existing confirmation on a re-cast, which keeps
// it stable across edits — spec.md §4.5, §9 Open Questions).
func (s *Store) UpsertBallot(ctx context.Context, electionName, voterName, confirmation string, whenCast time.Time, rankings []domain.Ranking) error {
	existing, err := s.getBallot(ctx, electionName, voterName)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.Confirmation = confirmation
		existing.Rankings = rankings
		return s.putBallot(ctx, *existing)
	}
	return s.putBallot(ctx, domain.Ballot{
		ElectionName: electionName, VoterName: voterName,
		Confirmation: confirmation, WhenCast: whenCast, Rankings: rankings,
	})
}

func (s *Store) SetBallotRankings(ctx context.Context, electionName, voterName string, rankings []domain.Ranking) error {
	b, err := s.getBallot(ctx, electionName, voterName)
	if err != nil {
		return err
	}
	if b == nil {
		return apperrors.Internal(apperrors.CodeBallotNotFound, "ranking change applied to unknown ballot")
	}
	b.Rankings = rankings
	return s.putBallot(ctx, *b)
}

func (s *Store) SetBallotTimestamp(ctx context.Context, electionName, voterName string, when time.Time) error {
	b, err := s.getBallot(ctx, electionName, voterName)
	if err != nil {
		return err
	}
	if b == nil {
		return apperrors.Internal(apperrors.CodeBallotNotFound, "timestamp bump applied to unknown ballot")
	}
	b.WhenCast = when
	return s.putBallot(ctx, *b)
}

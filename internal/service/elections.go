package service

import (
	"context"

	"kv-shepherd.io/shepherd/internal/authz"
	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
)

// CreateElection creates a draft election owned by callerName.
// Requires MANAGE_OWN_ELECTION (every USER holds it; the owner is
// always the caller).
func (s *Service) CreateElection(ctx context.Context, callerName, electionName string) error {
	if _, err := s.authorize(ctx, callerName, authz.PermManageOwnElection); err != nil {
		return err
	}
	if err := validateName("electionName", electionName); err != nil {
		return err
	}
	if existing, err := s.d.Storage.Query.SearchElectionByName(ctx, electionName); err != nil {
		return err
	} else if existing != nil {
		return apperrors.Conflict(apperrors.CodeElectionExists, "election "+electionName+" already exists")
	}
	_, err := s.append(ctx, callerName, domain.DomainEvent{
		Type:            domain.EventElectionCreated,
		ElectionCreated: &domain.ElectionCreated{ElectionName: electionName, OwnerName: callerName},
	})
	return err
}

// UpdateElection applies a partial patch to an election's settings.
// Edits to secretBallot are always allowed by the owner/admin; edits
// are otherwise restricted to draft, or to launched with allowEdit=true
// (spec.md §3 lifecycle states).
func (s *Service) UpdateElection(ctx context.Context, callerName, electionName string, patch domain.ElectionUpdated) error {
	e, err := s.requireElectionOwner(ctx, callerName, electionName)
	if err != nil {
		return err
	}
	if patch.AllowVote == nil && patch.AllowEdit == nil {
		if e.Stage() == domain.StageLaunched && !e.AllowEdit {
			return apperrors.PreconditionFailed(apperrors.CodeEditNotAllowed, "election "+electionName+" does not allow edits while launched")
		}
		if e.Stage() == domain.StageFinalized {
			return apperrors.PreconditionFailed(apperrors.CodeEditNotAllowed, "election "+electionName+" is finalized")
		}
	}
	patch.ElectionName = electionName
	_, err = s.append(ctx, callerName, domain.DomainEvent{Type: domain.EventElectionUpdated, ElectionUpdated: &patch})
	return err
}

// LaunchElection transitions draft -> launched, pinning allowEdit for
// the duration of voting.
func (s *Service) LaunchElection(ctx context.Context, callerName, electionName string, allowEdit bool) error {
	e, err := s.requireElectionOwner(ctx, callerName, electionName)
	if err != nil {
		return err
	}
	if e.Stage() != domain.StageDraft {
		return apperrors.PreconditionFailed(apperrors.CodeElectionNotDraft, "election "+electionName+" is not in draft")
	}
	allowVote := true
	_, err = s.append(ctx, callerName, domain.DomainEvent{
		Type: domain.EventElectionUpdated,
		ElectionUpdated: &domain.ElectionUpdated{
			ElectionName: electionName, AllowVote: &allowVote, AllowEdit: &allowEdit,
		},
	})
	return err
}

// FinalizeElection transitions launched -> finalized, closing voting.
func (s *Service) FinalizeElection(ctx context.Context, callerName, electionName string) error {
	e, err := s.requireElectionOwner(ctx, callerName, electionName)
	if err != nil {
		return err
	}
	if e.Stage() != domain.StageLaunched {
		return apperrors.PreconditionFailed(apperrors.CodeElectionNotOpen, "election "+electionName+" is not launched")
	}
	allowVote, allowEdit := false, false
	_, err = s.append(ctx, callerName, domain.DomainEvent{
		Type: domain.EventElectionUpdated,
		ElectionUpdated: &domain.ElectionUpdated{
			ElectionName: electionName, AllowVote: &allowVote, AllowEdit: &allowEdit,
		},
	})
	return err
}

// DeleteElection deletes an election and cascades to its candidates,
// eligible voters and ballots (spec.md §8 property 8).
func (s *Service) DeleteElection(ctx context.Context, callerName, electionName string) error {
	if _, err := s.requireElectionOwner(ctx, callerName, electionName); err != nil {
		return err
	}
	_, err := s.append(ctx, callerName, domain.DomainEvent{
		Type:            domain.EventElectionDeleted,
		ElectionDeleted: &domain.ElectionDeleted{ElectionName: electionName},
	})
	return err
}

// requireDraft loads the election and fails PreconditionFailed unless
// it is in draft — candidate/voter set mutation is draft-only
// (spec.md §3 invariant).
func (s *Service) requireDraft(ctx context.Context, callerName, electionName string) (*domain.Election, error) {
	e, err := s.requireElectionOwner(ctx, callerName, electionName)
	if err != nil {
		return nil, err
	}
	if e.Stage() != domain.StageDraft {
		return nil, apperrors.PreconditionFailed(apperrors.CodeElectionNotDraft, "election "+electionName+" candidate/voter set is fixed outside draft")
	}
	return e, nil
}

func dedupeNonEmpty(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// AddCandidates adds candidates to a draft election.
func (s *Service) AddCandidates(ctx context.Context, callerName, electionName string, names []string) error {
	if _, err := s.requireDraft(ctx, callerName, electionName); err != nil {
		return err
	}
	names = dedupeNonEmpty(names)
	if len(names) == 0 {
		return apperrors.ValidationFailed(apperrors.CodeValidationFailed, "candidate list must not be empty")
	}
	_, err := s.append(ctx, callerName, domain.DomainEvent{
		Type:            domain.EventCandidatesAdded,
		CandidatesAdded: &domain.CandidatesAdded{ElectionName: electionName, Candidates: names},
	})
	return err
}

// RemoveCandidates removes candidates from a draft election.
func (s *Service) RemoveCandidates(ctx context.Context, callerName, electionName string, names []string) error {
	if _, err := s.requireDraft(ctx, callerName, electionName); err != nil {
		return err
	}
	_, err := s.append(ctx, callerName, domain.DomainEvent{
		Type:              domain.EventCandidatesRemoved,
		CandidatesRemoved: &domain.CandidatesRemoved{ElectionName: electionName, Candidates: dedupeNonEmpty(names)},
	})
	return err
}

// AddVoters grants voting eligibility to existing users, draft only.
func (s *Service) AddVoters(ctx context.Context, callerName, electionName string, voterNames []string) error {
	if _, err := s.requireDraft(ctx, callerName, electionName); err != nil {
		return err
	}
	voterNames = dedupeNonEmpty(voterNames)
	for _, v := range voterNames {
		if u, err := s.d.Storage.Query.FindUserByName(ctx, v); err != nil || u == nil {
			return apperrors.ValidationFailed(apperrors.CodeVoterNotEligible, "voter "+v+" is not a registered user")
		}
	}
	_, err := s.append(ctx, callerName, domain.DomainEvent{
		Type:        domain.EventVotersAdded,
		VotersAdded: &domain.VotersAdded{ElectionName: electionName, Voters: voterNames},
	})
	return err
}

// RemoveVoters revokes voting eligibility, draft only.
func (s *Service) RemoveVoters(ctx context.Context, callerName, electionName string, voterNames []string) error {
	if _, err := s.requireDraft(ctx, callerName, electionName); err != nil {
		return err
	}
	_, err := s.append(ctx, callerName, domain.DomainEvent{
		Type:          domain.EventVotersRemoved,
		VotersRemoved: &domain.VotersRemoved{ElectionName: electionName, Voters: dedupeNonEmpty(voterNames)},
	})
	return err
}

// GetElection returns an election by name, NotFound if absent.
func (s *Service) GetElection(ctx context.Context, electionName string) (*domain.Election, error) {
	e, err := s.d.Storage.Query.SearchElectionByName(ctx, electionName)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperrors.NotFound(apperrors.CodeElectionNotFound, "election "+electionName+" not found")
	}
	return e, nil
}

// ListElections returns every election.
func (s *Service) ListElections(ctx context.Context) ([]domain.Election, error) {
	return s.d.Storage.Query.ListElections(ctx)
}

// ListCandidates returns an election's candidate set.
func (s *Service) ListCandidates(ctx context.Context, electionName string) ([]domain.Candidate, error) {
	return s.d.Storage.Query.ListCandidates(ctx, electionName)
}

// ListVoters returns an election's eligible-voter set.
func (s *Service) ListVoters(ctx context.Context, electionName string) ([]domain.EligibleVoter, error) {
	return s.d.Storage.Query.ListVotersForElection(ctx, electionName)
}

package service

import (
	"context"
	"fmt"
	"sort"

	"kv-shepherd.io/shepherd/internal/authz"
	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
	"kv-shepherd.io/shepherd/internal/storage"
	"kv-shepherd.io/shepherd/internal/tally"
)

// validateRankings checks spec.md §3 Ballot invariants: every ranked
// candidate exists in the election's candidate set, ranks are
// positive, and no candidate appears twice.
func (s *Service) validateRankings(ctx context.Context, electionName string, rankings []domain.Ranking) error {
	candidates, err := s.d.Storage.Query.ListCandidates(ctx, electionName)
	if err != nil {
		return err
	}
	valid := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		valid[c.Name] = struct{}{}
	}
	seen := make(map[string]struct{}, len(rankings))
	for _, r := range rankings {
		if _, ok := valid[r.CandidateName]; !ok {
			return apperrors.ValidationFailed(apperrors.CodeUnknownCandidate, "candidate "+r.CandidateName+" is not in this election")
		}
		if r.Rank <= 0 {
			return apperrors.ValidationFailed(apperrors.CodeNonPositiveRank, fmt.Sprintf("rank for %s must be positive", r.CandidateName))
		}
		if _, dup := seen[r.CandidateName]; dup {
			return apperrors.ValidationFailed(apperrors.CodeDuplicateCandidate, "candidate "+r.CandidateName+" ranked more than once")
		}
		seen[r.CandidateName] = struct{}{}
	}
	return nil
}

// CastBallot casts or re-casts voterName's ballot in electionName. A
// re-cast is only permitted while the election's allowEdit flag is
// set; storage is left unchanged (no event appended) on rejection
// (spec.md §8 scenario S4).
func (s *Service) CastBallot(ctx context.Context, callerName, electionName string, rankings []domain.Ranking) error {
	if _, err := s.authorize(ctx, callerName, authz.PermVote); err != nil {
		return err
	}
	e, err := s.GetElection(ctx, electionName)
	if err != nil {
		return err
	}
	if e.Stage() != domain.StageLaunched {
		return apperrors.PreconditionFailed(apperrors.CodeElectionNotOpen, "election "+electionName+" is not open for voting")
	}

	voters, err := s.d.Storage.Query.ListVotersForElection(ctx, electionName)
	if err != nil {
		return err
	}
	eligible := false
	for _, v := range voters {
		if v.VoterName == callerName {
			eligible = true
			break
		}
	}
	if !eligible {
		return apperrors.Forbidden(apperrors.CodeVoterNotEligible, "caller is not eligible to vote in "+electionName)
	}

	if err := s.validateRankings(ctx, electionName, rankings); err != nil {
		return err
	}

	existing, err := s.d.Storage.Query.SearchBallot(ctx, callerName, electionName)
	if err != nil {
		return err
	}
	confirmation := ""
	if existing != nil {
		if !e.AllowEdit {
			return apperrors.PreconditionFailed(apperrors.CodeEditNotAllowed, "election "+electionName+" does not allow ballot edits")
		}
		confirmation = existing.Confirmation
	} else {
		confirmation = s.d.IDs.Generate()
	}

	_, err = s.append(ctx, callerName, domain.DomainEvent{
		Type: domain.EventBallotCast,
		BallotCast: &domain.BallotCast{
			ElectionName: electionName, VoterName: callerName,
			Confirmation: confirmation, WhenCast: s.d.Clock.Now(), Rankings: rankings,
		},
	})
	return err
}

// ChangeBallotRankings overwrites the rankings of an already-cast
// ballot without disturbing its confirmation or whenCast, distinct
// from a full re-cast (spec.md §4.2 BallotRankingsChanged).
func (s *Service) ChangeBallotRankings(ctx context.Context, callerName, electionName string, rankings []domain.Ranking) error {
	e, err := s.GetElection(ctx, electionName)
	if err != nil {
		return err
	}
	if e.Stage() != domain.StageLaunched || !e.AllowEdit {
		return apperrors.PreconditionFailed(apperrors.CodeEditNotAllowed, "election "+electionName+" does not allow ballot edits")
	}
	if existing, err := s.d.Storage.Query.SearchBallot(ctx, callerName, electionName); err != nil {
		return err
	} else if existing == nil {
		return apperrors.NotFound(apperrors.CodeBallotNotFound, "no ballot cast by "+callerName+" in "+electionName)
	}
	if err := s.validateRankings(ctx, electionName, rankings); err != nil {
		return err
	}
	_, err = s.append(ctx, callerName, domain.DomainEvent{
		Type: domain.EventBallotRankingsChanged,
		BallotRankingsChanged: &domain.BallotRankingsChanged{
			ElectionName: electionName, VoterName: callerName, Rankings: rankings,
		},
	})
	return err
}

// ListBallots returns every ballot cast in electionName, masked per
// viewerName and the election's secretBallot flag.
func (s *Service) ListBallots(ctx context.Context, viewerName, electionName string) ([]storage.BallotView, error) {
	if _, err := s.authorize(ctx, viewerName, authz.PermViewBallotOwn); err != nil {
		return nil, err
	}
	return s.d.Storage.Query.ListBallots(ctx, electionName, viewerName)
}

// GetMyBallot returns the caller's own ballot in electionName, or nil
// if they have not voted.
func (s *Service) GetMyBallot(ctx context.Context, callerName, electionName string) (*domain.Ballot, error) {
	return s.d.Storage.Query.SearchBallot(ctx, callerName, electionName)
}

// Tally computes the Condorcet result for electionName. Callable while
// launched or finalized (spec.md §4.6).
func (s *Service) Tally(ctx context.Context, callerName, electionName string) (tally.Result, error) {
	if _, err := s.authorize(ctx, callerName, authz.PermViewTally); err != nil {
		return tally.Result{}, err
	}
	e, err := s.GetElection(ctx, electionName)
	if err != nil {
		return tally.Result{}, err
	}
	if e.Stage() == domain.StageDraft {
		return tally.Result{}, apperrors.PreconditionFailed(apperrors.CodeElectionNotOpen, "election "+electionName+" has not been launched")
	}

	candidates, err := s.d.Storage.Query.ListCandidates(ctx, electionName)
	if err != nil {
		return tally.Result{}, err
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	sort.Strings(names)

	views, err := s.d.Storage.Query.ListBallots(ctx, electionName, callerName)
	if err != nil {
		return tally.Result{}, err
	}
	ballots := make([]tally.Ballot, len(views))
	for i, v := range views {
		ballots[i] = tally.Ballot{VoterName: v.VoterName, Rankings: v.Rankings}
	}

	return tally.Compute(names, ballots), nil
}

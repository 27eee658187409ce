package storage

import (
	"context"
	"fmt"
	"time"

	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"

	"kv-shepherd.io/shepherd/internal/domain"
)

// Mutator is the low-level per-entity write surface each backend
// exposes to the shared ApplyEvent dispatcher. Every method's effect
// must be an absolute assignment or set operation (never a delta) so
// that applying the same event twice is a no-op the second time.
//
// Grounded on the same split the teacher uses between its ent-backed
// repository methods and its usecase-level orchestration: storage
// exposes narrow mutations, a single dispatcher decides which one a
// given event maps to.
type Mutator interface {
	CountUsers(ctx context.Context) (int, error)
	InsertUser(ctx context.Context, u domain.User) error
	UpdateUserRole(ctx context.Context, name string, role domain.Role) error
	UpdateUserPassword(ctx context.Context, name, salt, hash string) error
	UpdateUserEmail(ctx context.Context, name, email string) error
	RenameUser(ctx context.Context, oldName, newName string) error
	DeleteUser(ctx context.Context, name string) error

	InsertElection(ctx context.Context, e domain.Election) error
	UpdateElection(ctx context.Context, name string, patch domain.ElectionUpdated) error
	DeleteElection(ctx context.Context, name string) error

	AddCandidates(ctx context.Context, electionName string, names []string) error
	RemoveCandidates(ctx context.Context, electionName string, names []string) error

	AddVoters(ctx context.Context, electionName string, names []string) error
	RemoveVoters(ctx context.Context, electionName string, names []string) error

	UpsertBallot(ctx context.Context, electionName, voterName, confirmation string, whenCast time.Time, rankings []domain.Ranking) error
	SetBallotRankings(ctx context.Context, electionName, voterName string, rankings []domain.Ranking) error
	SetBallotTimestamp(ctx context.Context, electionName, voterName string, when time.Time) error
}

// ApplyEvent dispatches one DomainEvent to the Mutator method matching
// the apply-semantics table in spec.md §4.2. Every backend's
// CommandModel.Apply calls this inside its own per-event transaction
// boundary (or, for the in-memory backend, its mutex).
func ApplyEvent(ctx context.Context, m Mutator, event domain.DomainEvent) error {
	switch event.Type {
	case domain.EventUserRegistered:
		p := event.UserRegistered
		role := p.Role
		if role == "" {
			n, err := m.CountUsers(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				role = domain.RoleOwner
			} else {
				role = domain.RoleUser
			}
		}
		return m.InsertUser(ctx, domain.User{
			Name: p.Name, Email: p.Email, Salt: p.Salt, Hash: p.Hash, Role: role,
		})

	case domain.EventUserRoleChanged:
		p := event.UserRoleChanged
		return m.UpdateUserRole(ctx, p.Name, p.Role)

	case domain.EventUserPasswordChanged:
		p := event.UserPasswordChanged
		return m.UpdateUserPassword(ctx, p.Name, p.Salt, p.Hash)

	case domain.EventUserEmailChanged:
		p := event.UserEmailChanged
		return m.UpdateUserEmail(ctx, p.Name, p.Email)

	case domain.EventUserNameChanged:
		p := event.UserNameChanged
		return m.RenameUser(ctx, p.OldName, p.NewName)

	case domain.EventUserRemoved:
		p := event.UserRemoved
		return m.DeleteUser(ctx, p.Name)

	case domain.EventElectionCreated:
		p := event.ElectionCreated
		return m.InsertElection(ctx, domain.Election{
			Name: p.ElectionName, OwnerName: p.OwnerName,
			SecretBallot: true, AllowVote: false, AllowEdit: false,
		})

	case domain.EventElectionUpdated:
		p := event.ElectionUpdated
		return m.UpdateElection(ctx, p.ElectionName, *p)

	case domain.EventElectionDeleted:
		p := event.ElectionDeleted
		return m.DeleteElection(ctx, p.ElectionName)

	case domain.EventCandidatesAdded:
		p := event.CandidatesAdded
		return m.AddCandidates(ctx, p.ElectionName, p.Candidates)

	case domain.EventCandidatesRemoved:
		p := event.CandidatesRemoved
		return m.RemoveCandidates(ctx, p.ElectionName, p.Candidates)

	case domain.EventVotersAdded:
		p := event.VotersAdded
		return m.AddVoters(ctx, p.ElectionName, p.Voters)

	case domain.EventVotersRemoved:
		p := event.VotersRemoved
		return m.RemoveVoters(ctx, p.ElectionName, p.Voters)

	case domain.EventBallotCast:
		p := event.BallotCast
		return m.UpsertBallot(ctx, p.ElectionName, p.VoterName, p.Confirmation, p.WhenCast, p.Rankings)

	case domain.EventBallotTimestampBumped:
		p := event.BallotTimestampBumped
		return m.SetBallotTimestamp(ctx, p.ElectionName, p.VoterName, p.WhenCast)

	case domain.EventBallotRankingsChanged:
		p := event.BallotRankingsChanged
		return m.SetBallotRankings(ctx, p.ElectionName, p.VoterName, p.Rankings)

	default:
		return apperrors.Internal(apperrors.CodeUnknownEventType, fmt.Sprintf("unknown event type %q", event.Type))
	}
}

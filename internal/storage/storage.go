// Package storage defines the three-layer event-sourced storage
// contract (Event Log, Command Model, Query Model) that every backend
// adapter (in-memory, relational, wide-column) must satisfy
// identically. See internal/storage/memory, internal/storage/sqlstore
// and internal/storage/widecolumn for the three implementations, and
// compat_test.go for the cross-backend equivalence test.
package storage

import (
	"context"
	"time"

	"kv-shepherd.io/shepherd/internal/authz"
	"kv-shepherd.io/shepherd/internal/domain"
)

// EventLog is the append-only, totally ordered source of truth.
// Append-only: no update, no delete. Ids are gap-free and strictly
// increasing, assigned atomically.
type EventLog interface {
	// Append assigns the next eventId, persists the envelope and
	// returns the id. Returns a StorageUnavailable AppError if the
	// backing store rejects the write; on any error the record must
	// be invisible to subsequent EventsAfter calls.
	Append(ctx context.Context, authority string, whenOccurred time.Time, event domain.DomainEvent) (int64, error)

	// EventsAfter returns every envelope with EventID > cursor, in
	// strictly ascending EventID order.
	EventsAfter(ctx context.Context, cursor int64) ([]domain.EventEnvelope, error)

	// Count returns the total number of events persisted.
	Count(ctx context.Context) (int64, error)
}

// CommandModel owns materialized entity state and the lastSynced
// cursor. Applying the same event twice must yield the same state as
// applying it once (each variant's effect is an absolute assignment or
// set operation, never a delta).
type CommandModel interface {
	// Apply applies one event's effect. Must not partially persist: a
	// failure leaves state exactly as it was before the call.
	Apply(ctx context.Context, env domain.EventEnvelope) error

	// LastSynced returns the highest applied eventId (0 if none).
	LastSynced(ctx context.Context) (int64, error)

	// SetLastSynced advances the cursor. Callers must call this only
	// after the corresponding event's effect is durably stored, and
	// must never move it backward (Internal error if detected).
	SetLastSynced(ctx context.Context, id int64) error
}

// BallotView is a read-side ballot projection. VoterName is blanked and
// Masked set when the caller must not see voter identity (secret
// ballot, viewer is neither the ballot's owner nor the election owner).
type BallotView struct {
	ElectionName string
	VoterName    string
	Masked       bool
	Confirmation string
	WhenCast     time.Time
	Rankings     []domain.Ranking
}

// QueryModel is the read-only, natural-key relational projection.
// find* operations fail with NotFound when absent; search* operations
// return a nil pointer.
type QueryModel interface {
	FindUserByName(ctx context.Context, name string) (*domain.User, error)
	SearchUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UserCount(ctx context.Context) (int, error)

	SearchElectionByName(ctx context.Context, name string) (*domain.Election, error)
	ListElections(ctx context.Context) ([]domain.Election, error)
	ElectionCount(ctx context.Context) (int, error)

	ListCandidates(ctx context.Context, electionName string) ([]domain.Candidate, error)
	CandidateCount(ctx context.Context, electionName string) (int, error)

	ListVotersForElection(ctx context.Context, electionName string) ([]domain.EligibleVoter, error)
	VoterCount(ctx context.Context, electionName string) (int, error)

	SearchBallot(ctx context.Context, voterName, electionName string) (*domain.Ballot, error)
	// ListBallots returns every ballot cast in electionName. viewerName
	// is the identity of the caller; it is the sole input that decides
	// whether secret-ballot voter identity is masked (spec §4.9 design
	// note: secrecy depends on the viewer, not on storage).
	ListBallots(ctx context.Context, electionName, viewerName string) ([]BallotView, error)
	ListRankings(ctx context.Context, voterName, electionName string) ([]domain.Ranking, error)

	RoleHasPermission(role domain.Role, permission authz.Permission) bool
	ListPermissions(role domain.Role) []authz.Permission

	ListTables(ctx context.Context) ([]string, error)
	TableData(ctx context.Context, tableName string) ([]map[string]any, error)

	LastSynced(ctx context.Context) (int64, error)
}

// Backend names the three interchangeable adapter triples.
type Backend string

const (
	BackendMemory     Backend = "memory"
	BackendSQL        Backend = "sql"
	BackendWideColumn Backend = "widecolumn"
)

// Triple bundles one backend's EventLog, CommandModel and QueryModel
// implementations — the unit the Service layer depends on.
type Triple struct {
	Log     EventLog
	Command CommandModel
	Query   QueryModel
}

// maskBallot redacts voter identity per the secret-ballot rule shared
// by every backend's ListBallots: reveal only to the ballot's own
// voter or to the election's owner.
func maskBallot(b domain.Ballot, electionSecret bool, electionOwner, viewerName string) BallotView {
	v := BallotView{
		ElectionName: b.ElectionName,
		VoterName:    b.VoterName,
		Confirmation: b.Confirmation,
		WhenCast:     b.WhenCast,
		Rankings:     b.Rankings,
	}
	if electionSecret && viewerName != b.VoterName && viewerName != electionOwner {
		v.VoterName = ""
		v.Masked = true
	}
	return v
}

// MaskBallot exports maskBallot for backend packages.
func MaskBallot(b domain.Ballot, electionSecret bool, electionOwner, viewerName string) BallotView {
	return maskBallot(b, electionSecret, electionOwner, viewerName)
}

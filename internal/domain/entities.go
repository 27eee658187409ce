package domain

import "time"

// User is identified by its unique Name. Exactly one OWNER exists at
// any time: the first registrant.
type User struct {
	Name  string
	Email string
	Salt  string
	Hash  string
	Role  Role
}

// Election is identified by its unique Name. The three lifecycle
// states (draft, launched, finalized) are derived from AllowVote,
// AllowEdit and EverLaunched rather than stored as an enum.
type Election struct {
	Name           string
	OwnerName      string
	SecretBallot   bool
	AllowVote      bool
	AllowEdit      bool
	NoVotingBefore *time.Time
	NoVotingAfter  *time.Time

	// EverLaunched distinguishes "draft" (never launched) from
	// "finalized" (launched, then closed) when AllowVote is false.
	EverLaunched bool
}

// Stage is the derived lifecycle state of an Election.
type Stage string

const (
	StageDraft     Stage = "draft"
	StageLaunched  Stage = "launched"
	StageFinalized Stage = "finalized"
)

// Stage derives the election's lifecycle state from its flags.
func (e Election) Stage() Stage {
	if e.AllowVote {
		return StageLaunched
	}
	if e.EverLaunched {
		return StageFinalized
	}
	return StageDraft
}

// Candidate is (ElectionName, Name), unique, deleted with its election.
type Candidate struct {
	ElectionName string
	Name         string
}

// EligibleVoter is (ElectionName, VoterName), unique. VoterName must
// reference an existing User at the moment of insertion.
type EligibleVoter struct {
	ElectionName string
	VoterName    string
}

// Ballot is (ElectionName, VoterName), unique.
type Ballot struct {
	ElectionName string
	VoterName    string
	Confirmation string
	WhenCast     time.Time
	Rankings     []Ranking
}

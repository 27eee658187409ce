// Package domain defines the entities and append-only event types of the
// voting service: the closed DomainEvent set is part of the storage
// contract — a deserializer that encounters an unknown tag must fail
// with Internal rather than silently skip it (see storage.ApplyEvent).
package domain

import "time"

// EventType tags a DomainEvent variant in its serialized form.
type EventType string

const (
	EventUserRegistered        EventType = "USER_REGISTERED"
	EventUserRoleChanged       EventType = "USER_ROLE_CHANGED"
	EventUserPasswordChanged   EventType = "USER_PASSWORD_CHANGED"
	EventUserEmailChanged      EventType = "USER_EMAIL_CHANGED"
	EventUserNameChanged       EventType = "USER_NAME_CHANGED"
	EventUserRemoved           EventType = "USER_REMOVED"
	EventElectionCreated       EventType = "ELECTION_CREATED"
	EventElectionUpdated       EventType = "ELECTION_UPDATED"
	EventElectionDeleted       EventType = "ELECTION_DELETED"
	EventCandidatesAdded       EventType = "CANDIDATES_ADDED"
	EventCandidatesRemoved     EventType = "CANDIDATES_REMOVED"
	EventVotersAdded           EventType = "VOTERS_ADDED"
	EventVotersRemoved         EventType = "VOTERS_REMOVED"
	EventBallotCast            EventType = "BALLOT_CAST"
	EventBallotTimestampBumped EventType = "BALLOT_TIMESTAMP_UPDATED"
	EventBallotRankingsChanged EventType = "BALLOT_RANKINGS_CHANGED"
)

// Role is a user's platform role. OWNER ⊃ ADMIN ⊃ USER (see internal/authz).
type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Ranking is one (candidateName, rank) pair within a ballot. Rank is
// positive; lower rank is a stronger preference. Ties are permitted
// across candidates on the same ballot (spec open question #1).
type Ranking struct {
	CandidateName string `json:"candidateName"`
	Rank          int    `json:"rank"`
}

// DomainEvent is the closed, tagged-variant payload carried by an
// EventEnvelope. Exactly one of the typed fields is populated,
// matching the envelope's EventType tag.
type DomainEvent struct {
	Type EventType `json:"type"`

	UserRegistered        *UserRegistered        `json:"userRegistered,omitempty"`
	UserRoleChanged       *UserRoleChanged       `json:"userRoleChanged,omitempty"`
	UserPasswordChanged   *UserPasswordChanged   `json:"userPasswordChanged,omitempty"`
	UserEmailChanged      *UserEmailChanged      `json:"userEmailChanged,omitempty"`
	UserNameChanged       *UserNameChanged       `json:"userNameChanged,omitempty"`
	UserRemoved           *UserRemoved           `json:"userRemoved,omitempty"`
	ElectionCreated       *ElectionCreated       `json:"electionCreated,omitempty"`
	ElectionUpdated       *ElectionUpdated       `json:"electionUpdated,omitempty"`
	ElectionDeleted       *ElectionDeleted       `json:"electionDeleted,omitempty"`
	CandidatesAdded       *CandidatesAdded       `json:"candidatesAdded,omitempty"`
	CandidatesRemoved     *CandidatesRemoved     `json:"candidatesRemoved,omitempty"`
	VotersAdded           *VotersAdded           `json:"votersAdded,omitempty"`
	VotersRemoved         *VotersRemoved         `json:"votersRemoved,omitempty"`
	BallotCast            *BallotCast            `json:"ballotCast,omitempty"`
	BallotTimestampBumped *BallotTimestampBumped `json:"ballotTimestampUpdated,omitempty"`
	BallotRankingsChanged *BallotRankingsChanged `json:"ballotRankingsChanged,omitempty"`
}

type UserRegistered struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Salt  string `json:"salt"`
	Hash  string `json:"hash"`
	// Role is empty unless the event's producer pins a role explicitly
	// (Service.Register never does); CommandModel otherwise derives
	// OWNER/USER from registration order.
	Role Role `json:"role,omitempty"`
}

type UserRoleChanged struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

type UserPasswordChanged struct {
	Name string `json:"name"`
	Salt string `json:"salt"`
	Hash string `json:"hash"`
}

type UserEmailChanged struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserNameChanged struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

type UserRemoved struct {
	Name string `json:"name"`
}

type ElectionCreated struct {
	ElectionName string `json:"electionName"`
	OwnerName    string `json:"ownerName"`
}

// OptionalTime distinguishes "leave unchanged" (Set=false) from
// "clear to absent" (Set=true, Value=nil) for a nullable timestamp
// field in a partial update.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// ElectionUpdated carries only the fields being changed; nil/unset
// fields leave the corresponding attribute unchanged ("apply the
// nullable fields present" per the apply-semantics table).
type ElectionUpdated struct {
	ElectionName   string        `json:"electionName"`
	SecretBallot   *bool         `json:"secretBallot,omitempty"`
	AllowVote      *bool         `json:"allowVote,omitempty"`
	AllowEdit      *bool         `json:"allowEdit,omitempty"`
	NoVotingBefore *OptionalTime `json:"noVotingBefore,omitempty"`
	NoVotingAfter  *OptionalTime `json:"noVotingAfter,omitempty"`
}

type ElectionDeleted struct {
	ElectionName string `json:"electionName"`
}

type CandidatesAdded struct {
	ElectionName string   `json:"electionName"`
	Candidates   []string `json:"candidates"`
}

type CandidatesRemoved struct {
	ElectionName string   `json:"electionName"`
	Candidates   []string `json:"candidates"`
}

type VotersAdded struct {
	ElectionName string   `json:"electionName"`
	Voters       []string `json:"voters"`
}

type VotersRemoved struct {
	ElectionName string   `json:"electionName"`
	Voters       []string `json:"voters"`
}

type BallotCast struct {
	ElectionName string    `json:"electionName"`
	VoterName    string    `json:"voterName"`
	Confirmation string    `json:"confirmation"`
	WhenCast     time.Time `json:"whenCast"`
	Rankings     []Ranking `json:"rankings"`
}

type BallotTimestampBumped struct {
	ElectionName string    `json:"electionName"`
	VoterName    string    `json:"voterName"`
	WhenCast     time.Time `json:"whenCast"`
}

type BallotRankingsChanged struct {
	ElectionName string    `json:"electionName"`
	VoterName    string    `json:"voterName"`
	Rankings     []Ranking `json:"rankings"`
}

// EventEnvelope is the append-only, totally ordered record written by
// the Event Log. EventId is gap-free and monotonic starting at 1.
type EventEnvelope struct {
	EventID      int64       `json:"eventId"`
	Authority    string      `json:"authority"`
	WhenOccurred time.Time   `json:"whenOccurred"`
	Event        DomainEvent `json:"event"`
}

// Package memory implements the in-memory storage backend: maps keyed
// by natural keys, guarded by a single mutex. Grounded on the
// append-only, never-mutate discipline shown by
// other_examples/0a64582a_quantumlife-canon-core__pkg-domain-storelog-log.go.go,
// adapted to the three-layer EventLog/CommandModel/QueryModel split
// spec.md §4 requires.
package memory

import (
	"sync"

	"kv-shepherd.io/shepherd/internal/domain"
	"kv-shepherd.io/shepherd/internal/storage"
)

// Store is the single in-memory backend, implementing EventLog,
// CommandModel and QueryModel over one shared mutex. Tests and the
// "memory" deployment backend both construct it via New.
type Store struct {
	mu sync.RWMutex

	events     []domain.EventEnvelope
	lastSynced int64

	users      map[string]domain.User                    // key: Name
	elections  map[string]domain.Election                // key: Name
	candidates map[string]map[string]domain.Candidate    // key: electionName -> candidateName
	voters     map[string]map[string]domain.EligibleVoter // key: electionName -> voterName
	ballots    map[string]map[string]domain.Ballot        // key: electionName -> voterName
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		elections:  make(map[string]domain.Election),
		candidates: make(map[string]map[string]domain.Candidate),
		voters:     make(map[string]map[string]domain.EligibleVoter),
		ballots:    make(map[string]map[string]domain.Ballot),
	}
}

// Triple returns a storage.Triple backed by this Store; the three
// storage.EventLog / CommandModel / QueryModel facets are all the same
// underlying Store, mirroring the relationship the sql and widecolumn
// backends also use.
func (s *Store) Triple() storage.Triple {
	return storage.Triple{Log: s, Command: s, Query: s}
}

var _ storage.EventLog = (*Store)(nil)
var _ storage.CommandModel = (*Store)(nil)
var _ storage.QueryModel = (*Store)(nil)
var _ storage.Mutator = (*Store)(nil)

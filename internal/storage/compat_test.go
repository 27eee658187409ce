package storage_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"kv-shepherd.io/shepherd/internal/domain"
	"kv-shepherd.io/shepherd/internal/storage"
	"kv-shepherd.io/shepherd/internal/storage/memory"
	"kv-shepherd.io/shepherd/internal/storage/sqlstore"
	"kv-shepherd.io/shepherd/internal/storage/widecolumn"
)

// runScenario replays a fixed sequence of events through triple and
// returns the Query Model observables a caller would see afterward.
// Every backend must produce the same observables from the same event
// sequence (the cross-backend equivalence property every Triple
// implementation promises).
func runScenario(t *testing.T, triple storage.Triple) (users []domain.User, election *domain.Election, candidates []domain.Candidate, ballots []storage.BallotView) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	allowVote, allowEdit := true, true
	events := []domain.DomainEvent{
		{Type: domain.EventUserRegistered, UserRegistered: &domain.UserRegistered{
			Name: "alice", Email: "alice@example.com", Salt: "s", Hash: "h", Role: domain.RoleOwner,
		}},
		{Type: domain.EventUserRegistered, UserRegistered: &domain.UserRegistered{
			Name: "bob", Email: "bob@example.com", Salt: "s", Hash: "h", Role: domain.RoleUser,
		}},
		{Type: domain.EventElectionCreated, ElectionCreated: &domain.ElectionCreated{
			ElectionName: "Best Language", OwnerName: "alice",
		}},
		{Type: domain.EventCandidatesAdded, CandidatesAdded: &domain.CandidatesAdded{
			ElectionName: "Best Language", Candidates: []string{"Kotlin", "Rust", "Go"},
		}},
		{Type: domain.EventVotersAdded, VotersAdded: &domain.VotersAdded{
			ElectionName: "Best Language", Voters: []string{"bob"},
		}},
		{Type: domain.EventElectionUpdated, ElectionUpdated: &domain.ElectionUpdated{
			ElectionName: "Best Language", AllowVote: &allowVote, AllowEdit: &allowEdit,
		}},
		{Type: domain.EventBallotCast, BallotCast: &domain.BallotCast{
			ElectionName: "Best Language",
			VoterName:    "bob",
			Confirmation: "confirmation-1",
			WhenCast:     now,
			Rankings: []domain.Ranking{
				{CandidateName: "Kotlin", Rank: 1},
				{CandidateName: "Rust", Rank: 2},
				{CandidateName: "Go", Rank: 3},
			},
		}},
	}

	for i, ev := range events {
		_, err := triple.Log.Append(ctx, "alice", now, ev)
		require.NoError(t, err, "append event %d", i)
	}

	cursor, err := triple.Command.LastSynced(ctx)
	require.NoError(t, err)
	pending, err := triple.Log.EventsAfter(ctx, cursor)
	require.NoError(t, err)
	for _, env := range pending {
		require.NoError(t, triple.Command.Apply(ctx, env))
		require.NoError(t, triple.Command.SetLastSynced(ctx, env.EventID))
	}

	users, err = triple.Query.ListUsers(ctx)
	require.NoError(t, err)
	election, err = triple.Query.SearchElectionByName(ctx, "Best Language")
	require.NoError(t, err)
	candidates, err = triple.Query.ListCandidates(ctx, "Best Language")
	require.NoError(t, err)
	ballots, err = triple.Query.ListBallots(ctx, "Best Language", "alice")
	require.NoError(t, err)
	return users, election, candidates, ballots
}

func assertScenarioObservables(t *testing.T, backend string, users []domain.User, election *domain.Election, candidates []domain.Candidate, ballots []storage.BallotView) {
	t.Helper()
	require.Len(t, users, 2, "%s: user count", backend)
	require.NotNil(t, election, "%s: election", backend)
	require.Equal(t, "alice", election.OwnerName, "%s: election owner", backend)
	require.True(t, election.AllowVote, "%s: election launched", backend)
	require.Len(t, candidates, 3, "%s: candidate count", backend)
	require.Len(t, ballots, 1, "%s: ballot count", backend)
	require.Equal(t, "bob", ballots[0].VoterName, "%s: ballot voter", backend)
	require.Len(t, ballots[0].Rankings, 3, "%s: ballot ranking count", backend)
}

func TestCompat_Memory(t *testing.T) {
	triple := memory.New().Triple()
	users, election, candidates, ballots := runScenario(t, triple)
	assertScenarioObservables(t, "memory", users, election, candidates, ballots)
}

// TestCompat_SQL replays the same scenario against the sql backend.
// Requires TEST_DATABASE_URL (or DATABASE_URL); skipped otherwise,
// matching the teacher's sqlc repository test harness.
func TestCompat_SQL(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		t.Skip("set TEST_DATABASE_URL or DATABASE_URL to run the sql backend compatibility test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, pool.Ping(ctx))

	store := sqlstore.New(pool)
	require.NoError(t, store.Migrate(ctx))

	users, election, candidates, ballots := runScenario(t, store.Triple())
	assertScenarioObservables(t, "sql", users, election, candidates, ballots)
}

// TestCompat_WideColumn replays the same scenario against the
// wide-column backend. Requires TEST_REDIS_ADDR; skipped otherwise.
func TestCompat_WideColumn(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run the widecolumn backend compatibility test")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())
	require.NoError(t, rdb.FlushDB(ctx).Err())

	store := widecolumn.New(rdb)
	users, election, candidates, ballots := runScenario(t, store.Triple())
	assertScenarioObservables(t, "widecolumn", users, election, candidates, ballots)
}

package tally

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kv-shepherd.io/shepherd/internal/domain"
)

func rankings(pairs ...any) []domain.Ranking {
	out := make([]domain.Ranking, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, domain.Ranking{CandidateName: pairs[i].(string), Rank: pairs[i+1].(int)})
	}
	return out
}

// TestCondorcetWinner matches spec.md §8 scenario S3.
func TestCondorcetWinner(t *testing.T) {
	ballots := []Ballot{
		{VoterName: "B", Rankings: rankings("Apple", 1, "Banana", 2, "Cherry", 3)},
		{VoterName: "C", Rankings: rankings("Apple", 1, "Cherry", 2, "Banana", 3)},
		{VoterName: "D", Rankings: rankings("Banana", 1, "Apple", 2, "Cherry", 3)},
	}
	result := Compute([]string{"Apple", "Banana", "Cherry"}, ballots)
	require.NotEmpty(t, result.Places)
	assert.Equal(t, 1, result.Places[0].Rank)
	assert.Equal(t, []string{"Apple"}, result.Places[0].Candidates)
}

func TestCyclicTopCycle(t *testing.T) {
	// Classic Condorcet paradox: A>B>C>A in a 3-voter cycle.
	ballots := []Ballot{
		{VoterName: "v1", Rankings: rankings("A", 1, "B", 2, "C", 3)},
		{VoterName: "v2", Rankings: rankings("B", 1, "C", 2, "A", 3)},
		{VoterName: "v3", Rankings: rankings("C", 1, "A", 2, "B", 3)},
	}
	result := Compute([]string{"A", "B", "C"}, ballots)
	require.Len(t, result.Places, 1)
	assert.Equal(t, []string{"A", "B", "C"}, result.Places[0].Candidates)
}

func TestTiedTopTwoBeatLoser(t *testing.T) {
	// A and B tie with each other but both strictly beat C.
	ballots := []Ballot{
		{VoterName: "v1", Rankings: rankings("A", 1, "B", 1, "C", 2)},
		{VoterName: "v2", Rankings: rankings("B", 1, "A", 1, "C", 2)},
	}
	result := Compute([]string{"A", "B", "C"}, ballots)
	require.Len(t, result.Places, 2)
	assert.Equal(t, []string{"A", "B"}, result.Places[0].Candidates)
	assert.Equal(t, []string{"C"}, result.Places[1].Candidates)
}

func TestAbsentCandidateRankedLast(t *testing.T) {
	ballots := []Ballot{
		{VoterName: "v1", Rankings: rankings("A", 1)}, // B absent, ranked after A
	}
	result := Compute([]string{"A", "B"}, ballots)
	assert.Equal(t, 1, result.Matrix["A"]["B"])
	assert.Equal(t, 0, result.Matrix["B"]["A"])
	assert.Equal(t, []string{"A"}, result.Places[0].Candidates)
	assert.Equal(t, []string{"B"}, result.Places[1].Candidates)
}

// TestIdempotence matches spec.md §8 property 7.
func TestIdempotence(t *testing.T) {
	ballots := []Ballot{
		{VoterName: "v1", Rankings: rankings("A", 1, "B", 2)},
		{VoterName: "v2", Rankings: rankings("B", 1, "A", 2)},
	}
	first := Compute([]string{"A", "B"}, ballots)
	second := Compute([]string{"A", "B"}, ballots)
	assert.True(t, reflect.DeepEqual(first.Places, second.Places))
}

func TestSingleCandidate(t *testing.T) {
	result := Compute([]string{"Solo"}, nil)
	require.Len(t, result.Places, 1)
	assert.Equal(t, []string{"Solo"}, result.Places[0].Candidates)
}

// Package tally implements the Condorcet pairwise tally algorithm:
// pairwise preference counts, the beats relation, and the recursive
// Smith-set decomposition into dense-ranked Places.
package tally

import (
	"sort"

	"kv-shepherd.io/shepherd/internal/domain"
)

// Ballot is the tally engine's view of one cast ballot: a list of
// (candidate, rank) pairs, lower rank is a stronger preference.
// Candidates absent from Rankings are treated as ranked after every
// ranked candidate (spec.md §4.4.1); ties within a ballot are
// permitted (spec.md §9, Open Questions #1).
type Ballot struct {
	VoterName string
	Rankings  []domain.Ranking
}

// Place is one dense-ranked tier of the result: every candidate in
// Candidates is tied at Rank.
type Place struct {
	Rank       int
	Candidates []string
}

// Result is the full tally output: Places in ascending rank order,
// the raw pairwise-preference matrix, and the input ballots (callers
// redact voter identity per secretBallot before constructing Result
// when needed — the tally engine itself is secrecy-agnostic).
type Result struct {
	Places  []Place
	Matrix  map[string]map[string]int // Matrix[a][b] = prefer(a,b)
	Ballots []Ballot
}

// rankOf returns the rank a ballot assigns to candidate, or
// math.MaxInt if the candidate is absent (ranked after all ranked
// candidates, per spec).
func rankOf(b Ballot, candidate string) int {
	for _, r := range b.Rankings {
		if r.CandidateName == candidate {
			return r.Rank
		}
	}
	return int(^uint(0) >> 1) // max int: absent candidates rank last
}

// prefer counts ballots that rank a strictly ahead of b.
func prefer(ballots []Ballot, a, b string) int {
	n := 0
	for _, bal := range ballots {
		if rankOf(bal, a) < rankOf(bal, b) {
			n++
		}
	}
	return n
}

// Compute runs the Condorcet tally over ballots and candidates,
// returning dense-ranked Places, the pairwise matrix, and the input
// ballots. Deterministic: tallying the same ballot set twice yields
// equal Places (spec.md §8 property 7).
func Compute(candidates []string, ballots []Ballot) Result {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	matrix := make(map[string]map[string]int, len(sorted))
	for _, a := range sorted {
		matrix[a] = make(map[string]int, len(sorted))
		for _, b := range sorted {
			if a == b {
				continue
			}
			matrix[a][b] = prefer(ballots, a, b)
		}
	}

	beats := func(a, b string) bool {
		return matrix[a][b] > matrix[b][a]
	}

	remaining := sorted
	places := make([]Place, 0, len(sorted))
	rank := 0
	for len(remaining) > 0 {
		rank++
		smith := smithSet(remaining, beats)
		places = append(places, Place{Rank: rank, Candidates: smith})
		remaining = subtract(remaining, smith)
	}

	return Result{Places: places, Matrix: matrix, Ballots: ballots}
}

// smithSet returns the smallest non-empty set S ⊆ candidates such that
// every candidate in S beats every candidate outside S. With a single
// Condorcet winner, S is that winner alone; otherwise S is the top
// cycle.
//
// Computed by growing the Copeland-score tiers (highest score first)
// until the accumulated set is dominant — every member beats every
// candidate left outside. The top Copeland tier is always a subset of
// the true Smith set, so this converges to the minimal dominant set.
func smithSet(candidates []string, beats func(a, b string) bool) []string {
	if len(candidates) == 1 {
		return append([]string(nil), candidates...)
	}

	scores := make(map[string]int, len(candidates))
	for _, a := range candidates {
		for _, b := range candidates {
			if a != b && beats(a, b) {
				scores[a]++
			}
		}
	}

	tiers := map[int][]string{}
	distinct := make([]int, 0)
	seen := make(map[int]bool)
	for _, c := range candidates {
		s := scores[c]
		tiers[s] = append(tiers[s], c)
		if !seen[s] {
			seen[s] = true
			distinct = append(distinct, s)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(distinct)))

	inSet := make(map[string]bool, len(candidates))
	for _, score := range distinct {
		for _, c := range tiers[score] {
			inSet[c] = true
		}
		if isDominantSet(inSet, candidates, beats) {
			break
		}
	}

	set := make([]string, 0, len(inSet))
	for c := range inSet {
		set = append(set, c)
	}
	sort.Strings(set)
	return set
}

// isDominantSet reports whether every candidate in inSet beats every
// candidate outside it.
func isDominantSet(inSet map[string]bool, candidates []string, beats func(a, b string) bool) bool {
	for i := range inSet {
		for _, o := range candidates {
			if inSet[o] {
				continue
			}
			if !beats(i, o) {
				return false
			}
		}
	}
	return true
}

func subtract(all, remove []string) []string {
	removeSet := make(map[string]struct{}, len(remove))
	for _, r := range remove {
		removeSet[r] = struct{}{}
	}
	out := make([]string, 0, len(all)-len(remove))
	for _, c := range all {
		if _, ok := removeSet[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

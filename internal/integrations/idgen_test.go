package integrations

import "testing"

func TestDeterministicIDGenerator_SequenceInCallOrder(t *testing.T) {
	gen := NewDeterministicIDGenerator("ballot")

	first := gen.Generate()
	second := gen.Generate()
	third := gen.Generate()

	if first != "ballot-1" {
		t.Errorf("first = %q, want %q", first, "ballot-1")
	}
	if second != "ballot-2" {
		t.Errorf("second = %q, want %q", second, "ballot-2")
	}
	if third != "ballot-3" {
		t.Errorf("third = %q, want %q", third, "ballot-3")
	}
}

func TestDeterministicIDGenerator_IndependentPrefixesDoNotShareCounters(t *testing.T) {
	a := NewDeterministicIDGenerator("a")
	b := NewDeterministicIDGenerator("b")

	a.Generate()
	if got := b.Generate(); got != "b-1" {
		t.Fatalf("b.Generate() = %q, want %q", got, "b-1")
	}
}

func TestUUIDGenerator_ProducesDistinctNonEmptyIDs(t *testing.T) {
	gen := UUIDGenerator{}

	first := gen.Generate()
	second := gen.Generate()

	if first == "" || second == "" {
		t.Fatal("expected non-empty generated ids")
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
}

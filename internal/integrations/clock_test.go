package integrations

import (
	"testing"
	"time"
)

func TestFixedClock_NowReturnsFixedInstant(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewFixedClock(t0)

	if got := clock.Now(); !got.Equal(t0) {
		t.Fatalf("Now() = %v, want %v", got, t0)
	}
	if got := clock.Now(); !got.Equal(t0) {
		t.Fatalf("second Now() = %v, want unchanged %v", got, t0)
	}
}

func TestFixedClock_Advance(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewFixedClock(t0)

	clock.Advance(time.Hour)

	want := t0.Add(time.Hour)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestSystemClock_ReturnsCurrentTime(t *testing.T) {
	before := time.Now()
	got := SystemClock{}.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Fatalf("SystemClock.Now() = %v, want between %v and %v", got, before, after)
	}
}

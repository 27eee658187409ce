package integrations

import (
	"testing"

	"kv-shepherd.io/shepherd/internal/pkg/logger"
)

func init() {
	_ = logger.Init("error", "json")
}

func TestRecordingNotifications_RecordsActionsAndLines(t *testing.T) {
	rec := &RecordingNotifications{}

	rec.Notify("BALLOT_CAST", "election", "best-language", "bob", map[string]any{"candidates": 3})
	rec.Notify("ELECTION_CREATED", "election", "best-language", "alice", nil)
	rec.EmitLine("seed complete")

	if len(rec.Actions) != 2 {
		t.Fatalf("len(Actions) = %d, want 2", len(rec.Actions))
	}
	if rec.Actions[0] != "BALLOT_CAST" || rec.Actions[1] != "ELECTION_CREATED" {
		t.Fatalf("Actions = %v, want [BALLOT_CAST ELECTION_CREATED]", rec.Actions)
	}
	if len(rec.Lines) != 1 || rec.Lines[0] != "seed complete" {
		t.Fatalf("Lines = %v, want [seed complete]", rec.Lines)
	}
}

func TestZapNotifications_DoesNotPanic(t *testing.T) {
	n := NewZapNotifications()
	n.Notify("BALLOT_CAST", "election", "best-language", "bob", map[string]any{"k": "v"})
	n.Notify("BALLOT_CAST", "election", "best-language", "bob", nil)
	n.EmitLine("diagnostic")
}

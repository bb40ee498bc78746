package model

import "testing"

func TestPairKeyIsSymmetric(t *testing.T) {
	if PairKey("alice", "bob") != PairKey("bob", "alice") {
		t.Fatalf("pair key must not depend on argument order")
	}
	if got := PairKey("bob", "alice"); got != "alice|bob" {
		t.Fatalf("unexpected pair key: %q", got)
	}

	low, high, ok := SplitPairKey(PairKey("zed", "amy"))
	if !ok || low != "amy" || high != "zed" {
		t.Fatalf("unexpected split: %q %q %v", low, high, ok)
	}
	if _, _, ok := SplitPairKey("nopair"); ok {
		t.Fatalf("expected split failure for malformed key")
	}
}

func TestPairKeyOrdersMixedCaseBytewise(t *testing.T) {
	if got := PairKey("alice", "Bob"); got != "Bob|alice" {
		t.Fatalf("unexpected pair key: %q", got)
	}
	if PairKey("user_2NNEabc", "user_2nneabc") != PairKey("user_2nneabc", "user_2NNEabc") {
		t.Fatalf("pair key must not depend on argument order")
	}
}

func TestMatchEventMirror(t *testing.T) {
	evt := MatchEvent{ID: "e1", SubjectUserID: "alice", CounterpartUserID: "bob"}
	mirrored := evt.Mirror()
	if mirrored.SubjectUserID != "bob" || mirrored.CounterpartUserID != "alice" || mirrored.ID != "e1" {
		t.Fatalf("unexpected mirror: %+v", mirrored)
	}
}

package game

import "testing"

func TestParticipantsContains(t *testing.T) {
	pair := Participants{P1: "alice", P2: "bob"}

	if !pair.Contains("alice") {
		t.Fatal("expected alice to be a participant")
	}
	if !pair.Contains("bob") {
		t.Fatal("expected bob to be a participant")
	}
	if pair.Contains("mallory") {
		t.Fatal("expected mallory not to be a participant")
	}
}

func TestSlotOf(t *testing.T) {
	pair := Participants{P1: "alice", P2: "bob"}

	if got := pair.SlotOf("alice"); got != SlotP1 {
		t.Fatalf("expected SlotP1, got %v", got)
	}
	if got := pair.SlotOf("bob"); got != SlotP2 {
		t.Fatalf("expected SlotP2, got %v", got)
	}
	if got := pair.SlotOf("mallory"); got != SlotNone {
		t.Fatalf("expected SlotNone, got %v", got)
	}
}

func TestIdentityValid(t *testing.T) {
	if Identity("").Valid() {
		t.Fatal("expected empty identity to be invalid")
	}
	if Identity("   ").Valid() {
		t.Fatal("expected blank identity to be invalid")
	}
	if !Identity("alice").Valid() {
		t.Fatal("expected non-empty identity to be valid")
	}
}

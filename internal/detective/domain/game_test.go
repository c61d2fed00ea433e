package domain

import (
	"crypto/rand"
	"testing"

	"github.com/louisbranch/zkgames/internal/commitment"
	"github.com/louisbranch/zkgames/internal/game"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
)

func testSalt(t *testing.T) commitment.Salt {
	t.Helper()
	var salt commitment.Salt
	if _, err := rand.Read(salt[:]); err != nil {
		t.Fatalf("read salt: %v", err)
	}
	return salt
}

func testGame() Game {
	return NewGame(1, 10, game.Participants{P1: "alice", P2: "bob"}, game.Stakes{P1: 100, P2: 100}, 50)
}

func TestAccusationValidateRanges(t *testing.T) {
	salt := testSalt(t)
	cases := []struct {
		name      string
		accu      Accusation
		wantValid bool
	}{
		{"valid bounds low", Accusation{Suspect: 1, Weapon: 1, Room: 1, Salt: salt}, true},
		{"valid bounds high", Accusation{Suspect: 9, Weapon: 5, Room: 5, Salt: salt}, true},
		{"zero suspect", Accusation{Suspect: 0, Weapon: 1, Room: 1, Salt: salt}, false},
		{"suspect too high", Accusation{Suspect: 10, Weapon: 1, Room: 1, Salt: salt}, false},
		{"zero weapon", Accusation{Suspect: 1, Weapon: 0, Room: 1, Salt: salt}, false},
		{"weapon too high", Accusation{Suspect: 1, Weapon: 6, Room: 1, Salt: salt}, false},
		{"zero room", Accusation{Suspect: 1, Weapon: 1, Room: 0, Salt: salt}, false},
		{"room too high", Accusation{Suspect: 1, Weapon: 1, Room: 6, Salt: salt}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.accu.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid accusation, got %v", err)
			}
			if !tc.wantValid && apperrors.CodeOf(err) != apperrors.CodeInvalidAccusationID {
				t.Fatalf("expected INVALID_ACCUSATION_ID, got %v", err)
			}
		})
	}
}

func TestApplyAccusationCorrectSolvesGame(t *testing.T) {
	salt := testSalt(t)
	solution := Accusation{Suspect: 1, Weapon: 1, Room: 1, Salt: salt}
	g := testGame()

	correct, err := g.ApplyAccusation("alice", solution, solution.Digest(), 80)
	if err != nil {
		t.Fatalf("apply accusation: %v", err)
	}
	if !correct {
		t.Fatal("expected correct accusation")
	}
	if g.Status != StatusSolved {
		t.Fatalf("expected solved status, got %s", g.Status)
	}
	if g.Winner == nil || *g.Winner != "alice" {
		t.Fatalf("expected winner alice, got %v", g.Winner)
	}
	if g.SolveHeight != 80 {
		t.Fatalf("expected solve height 80, got %d", g.SolveHeight)
	}
}

func TestApplyAccusationWrongIncrementsCounter(t *testing.T) {
	salt := testSalt(t)
	solution := Accusation{Suspect: 1, Weapon: 1, Room: 1, Salt: salt}
	wrong := Accusation{Suspect: 2, Weapon: 1, Room: 1, Salt: salt}
	g := testGame()

	correct, err := g.ApplyAccusation("bob", wrong, solution.Digest(), 80)
	if err != nil {
		t.Fatalf("apply accusation: %v", err)
	}
	if correct {
		t.Fatal("expected wrong accusation")
	}
	if g.Status != StatusActive {
		t.Fatalf("expected game to stay active, got %s", g.Status)
	}
	if g.WrongAccusations != 1 {
		t.Fatalf("expected 1 wrong accusation, got %d", g.WrongAccusations)
	}
	if g.Winner != nil {
		t.Fatal("expected no winner")
	}
}

func TestApplyAccusationRejectsOutsiderAndEnded(t *testing.T) {
	salt := testSalt(t)
	solution := Accusation{Suspect: 1, Weapon: 1, Room: 1, Salt: salt}
	g := testGame()

	if _, err := g.ApplyAccusation("mallory", solution, solution.Digest(), 80); apperrors.CodeOf(err) != apperrors.CodeNotPlayer {
		t.Fatalf("expected NOT_PLAYER, got %v", err)
	}

	g.Status = StatusSolved
	if _, err := g.ApplyAccusation("alice", solution, solution.Digest(), 80); apperrors.CodeOf(err) != apperrors.CodeGameNotActive {
		t.Fatalf("expected GAME_NOT_ACTIVE, got %v", err)
	}
}

func TestApplyAccusationValidatesBeforeStateChecks(t *testing.T) {
	salt := testSalt(t)
	g := testGame()
	g.Status = StatusSolved

	// Out-of-range input fails validation even on an ended game.
	bad := Accusation{Suspect: 99, Weapon: 1, Room: 1, Salt: salt}
	if _, err := g.ApplyAccusation("alice", bad, commitment.Digest{}, 80); apperrors.CodeOf(err) != apperrors.CodeInvalidAccusationID {
		t.Fatalf("expected INVALID_ACCUSATION_ID, got %v", err)
	}
}

func TestRecordProgressOverwritesCounters(t *testing.T) {
	g := testGame()
	if err := g.RecordProgress("alice", 4, 2); err != nil {
		t.Fatalf("record progress: %v", err)
	}
	if g.CluesInspected != 4 || g.RoomsVisited != 2 {
		t.Fatalf("expected counters 4/2, got %d/%d", g.CluesInspected, g.RoomsVisited)
	}

	// Counters are overwritten, not accumulated.
	if err := g.RecordProgress("bob", 1, 1); err != nil {
		t.Fatalf("record progress: %v", err)
	}
	if g.CluesInspected != 1 || g.RoomsVisited != 1 {
		t.Fatalf("expected counters 1/1, got %d/%d", g.CluesInspected, g.RoomsVisited)
	}

	if err := g.RecordProgress("mallory", 9, 9); apperrors.CodeOf(err) != apperrors.CodeNotPlayer {
		t.Fatalf("expected NOT_PLAYER, got %v", err)
	}
}

func TestAbandonTransitions(t *testing.T) {
	g := testGame()
	if err := g.Abandon(); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if g.Status != StatusAbandoned {
		t.Fatalf("expected abandoned status, got %s", g.Status)
	}
	if g.Winner != nil {
		t.Fatal("expected no winner after abandon")
	}

	if err := g.Abandon(); apperrors.CodeOf(err) != apperrors.CodeGameAlreadyEnded {
		t.Fatalf("expected GAME_ALREADY_ENDED, got %v", err)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	for _, status := range []Status{StatusActive, StatusSolved, StatusAbandoned} {
		parsed, ok := ParseStatus(status.String())
		if !ok {
			t.Fatalf("parse status %s failed", status)
		}
		if parsed != status {
			t.Fatalf("expected %s, got %s", status, parsed)
		}
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Fatal("expected bogus status to fail parsing")
	}
}

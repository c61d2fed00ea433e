package domain

import (
	"testing"

	"github.com/louisbranch/zkgames/internal/commitment"
	"github.com/louisbranch/zkgames/internal/game"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
)

var (
	alice = game.Identity("alice")
	bob   = game.Identity("bob")
	carol = game.Identity("carol")
)

func testSalt(b byte) commitment.Salt {
	var s commitment.Salt
	for i := range s {
		s[i] = b
	}
	return s
}

func activeGame(t *testing.T) Game {
	t.Helper()
	g, err := NewGame(1, 7, game.Participants{P1: alice, P2: bob}, game.Stakes{P1: 100, P2: 100}, 50)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func commitGuess(t *testing.T, g *Game, player game.Identity, guess Guess, height uint64) {
	t.Helper()
	digest := commitment.Commit([]uint32{guess.X, guess.Y}, guess.Salt, string(player))
	if err := g.ApplyCommitment(player, digest, height); err != nil {
		t.Fatalf("commit for %s: %v", player, err)
	}
}

func TestNewGameRejectsSelfPlay(t *testing.T) {
	_, err := NewGame(1, 7, game.Participants{P1: alice, P2: alice}, game.Stakes{}, 50)
	if apperrors.CodeOf(err) != apperrors.CodeSelfPlay {
		t.Fatalf("expected self play error, got %v", err)
	}
}

func TestApplyCommitmentOncePerPlayer(t *testing.T) {
	g := activeGame(t)
	guess := Guess{X: 10, Y: 20, Salt: testSalt(1)}
	commitGuess(t, &g, alice, guess, 51)

	digest := commitment.Commit([]uint32{guess.X, guess.Y}, guess.Salt, string(alice))
	err := g.ApplyCommitment(alice, digest, 52)
	if apperrors.CodeOf(err) != apperrors.CodeAlreadyCommitted {
		t.Fatalf("expected already committed, got %v", err)
	}
	if got := *g.P1.CommitHeight; got != 51 {
		t.Fatalf("expected commit height 51, got %d", got)
	}
}

func TestApplyCommitmentRejectsOutsider(t *testing.T) {
	g := activeGame(t)
	digest := commitment.Commit([]uint32{1, 2}, testSalt(3), string(carol))
	err := g.ApplyCommitment(carol, digest, 51)
	if apperrors.CodeOf(err) != apperrors.CodeNotPlayer {
		t.Fatalf("expected not player, got %v", err)
	}
}

func TestApplyRevealGatedOnAllCommitments(t *testing.T) {
	g := activeGame(t)
	guess := Guess{X: 10, Y: 20, Salt: testSalt(1)}
	commitGuess(t, &g, alice, guess, 51)

	err := g.ApplyReveal(alice, guess)
	if apperrors.CodeOf(err) != apperrors.CodeNotAllCommitted {
		t.Fatalf("expected not all committed, got %v", err)
	}
}

func TestApplyRevealVerifiesDigest(t *testing.T) {
	g := activeGame(t)
	guess := Guess{X: 10, Y: 20, Salt: testSalt(1)}
	commitGuess(t, &g, alice, guess, 51)
	commitGuess(t, &g, bob, Guess{X: 30, Y: 40, Salt: testSalt(2)}, 52)

	wrong := Guess{X: 11, Y: 20, Salt: testSalt(1)}
	err := g.ApplyReveal(alice, wrong)
	if apperrors.CodeOf(err) != apperrors.CodeCommitmentMismatch {
		t.Fatalf("expected commitment mismatch, got %v", err)
	}
	if g.P1.Revealed() {
		t.Fatal("mismatched reveal must not be recorded")
	}

	if err := g.ApplyReveal(alice, guess); err != nil {
		t.Fatalf("valid reveal: %v", err)
	}
	if got := *g.P1.Reveal; got != (Point{X: 10, Y: 20}) {
		t.Fatalf("expected reveal (10,20), got %+v", got)
	}
}

func TestApplyRevealRejectsReplayedCommitment(t *testing.T) {
	// Bob copies Alice's digest verbatim. His reveal of the same
	// coordinates and salt still fails because the digest binds her
	// identity, not his.
	g := activeGame(t)
	guess := Guess{X: 10, Y: 20, Salt: testSalt(1)}
	aliceDigest := commitment.Commit([]uint32{guess.X, guess.Y}, guess.Salt, string(alice))
	if err := g.ApplyCommitment(alice, aliceDigest, 51); err != nil {
		t.Fatalf("commit for alice: %v", err)
	}
	if err := g.ApplyCommitment(bob, aliceDigest, 52); err != nil {
		t.Fatalf("commit for bob: %v", err)
	}

	err := g.ApplyReveal(bob, guess)
	if apperrors.CodeOf(err) != apperrors.CodeCommitmentMismatch {
		t.Fatalf("expected commitment mismatch, got %v", err)
	}
}

func TestApplyRevealOncePerPlayer(t *testing.T) {
	g := activeGame(t)
	guess := Guess{X: 10, Y: 20, Salt: testSalt(1)}
	commitGuess(t, &g, alice, guess, 51)
	commitGuess(t, &g, bob, Guess{X: 30, Y: 40, Salt: testSalt(2)}, 52)

	if err := g.ApplyReveal(alice, guess); err != nil {
		t.Fatalf("valid reveal: %v", err)
	}
	err := g.ApplyReveal(alice, guess)
	if apperrors.CodeOf(err) != apperrors.CodeAlreadyRevealed {
		t.Fatalf("expected already revealed, got %v", err)
	}
}

func TestResolvedSessionRefusesProtocolMoves(t *testing.T) {
	g := activeGame(t)
	g.Status = StatusResolved

	digest := commitment.Commit([]uint32{1, 2}, testSalt(3), string(alice))
	if err := g.ApplyCommitment(alice, digest, 53); apperrors.CodeOf(err) != apperrors.CodeGameNotActive {
		t.Fatalf("expected game not active, got %v", err)
	}
	if err := g.ApplyReveal(alice, Guess{}); apperrors.CodeOf(err) != apperrors.CodeGameNotActive {
		t.Fatalf("expected game not active, got %v", err)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	for _, status := range []Status{StatusActive, StatusResolved} {
		parsed, err := ParseStatus(status.String())
		if err != nil {
			t.Fatalf("parse %s: %v", status, err)
		}
		if parsed != status {
			t.Fatalf("expected %v, got %v", status, parsed)
		}
	}
	if _, err := ParseStatus("bogus"); err == nil {
		t.Fatal("expected error for unknown label")
	}
}

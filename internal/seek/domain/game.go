package domain

import (
	"fmt"

	"github.com/louisbranch/zkgames/internal/commitment"
	"github.com/louisbranch/zkgames/internal/game"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
)

// Status tracks a session's lifecycle.
type Status int

const (
	StatusActive Status = iota
	StatusResolved
)

// Terminal reports whether the session reached an end state. There is no
// explicit cancellation for this protocol; stalled sessions age out under
// the storage TTL instead.
func (s Status) Terminal() bool {
	return s == StatusResolved
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusResolved:
		return "resolved"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus converts a stored status label back to its enum value.
func ParseStatus(label string) (Status, error) {
	switch label {
	case "active":
		return StatusActive, nil
	case "resolved":
		return StatusResolved, nil
	}
	return 0, fmt.Errorf("unknown status %q", label)
}

// Point is a revealed guess coordinate.
type Point struct {
	X uint32
	Y uint32
}

// PlayerState holds one participant's protocol progress. Commitment and
// CommitHeight are set together by Commit; Reveal is set once the opened
// guess verifies against the commitment.
type PlayerState struct {
	Commitment   *commitment.Digest
	CommitHeight *uint64
	Reveal       *Point
}

// Committed reports whether the player has submitted a commitment.
func (p PlayerState) Committed() bool { return p.Commitment != nil }

// Revealed reports whether the player has opened their commitment.
func (p PlayerState) Revealed() bool { return p.Reveal != nil }

// Game is one commit-reveal session between two players on a scene.
type Game struct {
	SessionID   uint32
	SceneID     uint32
	Players     game.Participants
	Stakes      game.Stakes
	StartHeight uint64
	Status      Status
	Winner      *game.Identity
	P1          PlayerState
	P2          PlayerState
}

// NewGame starts an active session. Self-play is rejected before any
// state is created.
func NewGame(sessionID, sceneID uint32, players game.Participants, stakes game.Stakes, height uint64) (Game, error) {
	if players.P1 == players.P2 {
		return Game{}, apperrors.New(apperrors.CodeSelfPlay, "both seats name the same player")
	}
	return Game{
		SessionID:   sessionID,
		SceneID:     sceneID,
		Players:     players,
		Stakes:      stakes,
		StartHeight: height,
		Status:      StatusActive,
	}, nil
}

func (g *Game) slotState(slot game.Slot) *PlayerState {
	if slot == game.SlotP1 {
		return &g.P1
	}
	return &g.P2
}

// AllCommitted reports whether both players have committed.
func (g Game) AllCommitted() bool { return g.P1.Committed() && g.P2.Committed() }

// AllRevealed reports whether both players have revealed.
func (g Game) AllRevealed() bool { return g.P1.Revealed() && g.P2.Revealed() }

// ApplyCommitment records caller's guess digest at the given height. Each
// player commits at most once; the digest itself is opaque until reveal.
func (g *Game) ApplyCommitment(caller game.Identity, digest commitment.Digest, height uint64) error {
	if g.Status != StatusActive {
		return apperrors.WithMetadata(apperrors.CodeGameNotActive, "session is not active",
			map[string]string{"status": g.Status.String()})
	}
	slot := g.Players.SlotOf(caller)
	if slot == game.SlotNone {
		return apperrors.New(apperrors.CodeNotPlayer, "caller is not a participant")
	}
	st := g.slotState(slot)
	if st.Committed() {
		return apperrors.New(apperrors.CodeAlreadyCommitted, "player already committed")
	}
	st.Commitment = &digest
	st.CommitHeight = &height
	return nil
}

// Guess is an opened commitment: the coordinates plus the salt used when
// the digest was computed.
type Guess struct {
	X    uint32
	Y    uint32
	Salt commitment.Salt
}

// ApplyReveal opens caller's commitment. Reveals are gated on both
// commitments being present so neither player can adapt to the other's
// opened guess. The recomputed digest is bound to the caller's identity,
// which stops one player replaying the other's commitment.
func (g *Game) ApplyReveal(caller game.Identity, guess Guess) error {
	if g.Status != StatusActive {
		return apperrors.WithMetadata(apperrors.CodeGameNotActive, "session is not active",
			map[string]string{"status": g.Status.String()})
	}
	slot := g.Players.SlotOf(caller)
	if slot == game.SlotNone {
		return apperrors.New(apperrors.CodeNotPlayer, "caller is not a participant")
	}
	if !g.AllCommitted() {
		return apperrors.New(apperrors.CodeNotAllCommitted, "waiting for all commitments")
	}
	st := g.slotState(slot)
	if st.Revealed() {
		return apperrors.New(apperrors.CodeAlreadyRevealed, "player already revealed")
	}
	digest := commitment.Commit([]uint32{guess.X, guess.Y}, guess.Salt, string(caller))
	if !commitment.Equal(digest, *st.Commitment) {
		return apperrors.New(apperrors.CodeCommitmentMismatch, "reveal does not match commitment")
	}
	st.Reveal = &Point{X: guess.X, Y: guess.Y}
	return nil
}

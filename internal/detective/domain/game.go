package domain

import (
	"github.com/louisbranch/zkgames/internal/commitment"
	"github.com/louisbranch/zkgames/internal/game"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
)

// Valid accusation component ranges: suspects 1-9, weapons 1-5, rooms 1-5.
const (
	MaxSuspectID uint32 = 9
	MaxWeaponID  uint32 = 5
	MaxRoomID    uint32 = 5
)

// Status is the lifecycle state of an accusation game.
type Status int

const (
	// StatusActive accepts progress updates and accusations.
	StatusActive Status = iota
	// StatusSolved is terminal: a correct accusation ended the game.
	StatusSolved
	// StatusAbandoned is terminal: an administrator cancelled the game.
	StatusAbandoned
)

// Terminal reports whether no further state-changing operation is accepted.
func (s Status) Terminal() bool {
	return s == StatusSolved || s == StatusAbandoned
}

// String returns the storage representation of the status.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSolved:
		return "solved"
	case StatusAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// ParseStatus reverses String for persisted values.
func ParseStatus(value string) (Status, bool) {
	switch value {
	case "active":
		return StatusActive, true
	case "solved":
		return StatusSolved, true
	case "abandoned":
		return StatusAbandoned, true
	default:
		return StatusActive, false
	}
}

// Game is the session record for the accusation protocol.
type Game struct {
	SessionID        uint32
	CaseID           uint32
	Players          game.Participants
	Stakes           game.Stakes
	StartHeight      uint64
	SolveHeight      uint64
	CluesInspected   uint32
	RoomsVisited     uint32
	WrongAccusations uint32
	Status           Status
	Winner           *game.Identity
}

// NewGame creates an active game with zeroed counters.
func NewGame(sessionID, caseID uint32, players game.Participants, stakes game.Stakes, startHeight uint64) Game {
	return Game{
		SessionID:   sessionID,
		CaseID:      caseID,
		Players:     players,
		Stakes:      stakes,
		StartHeight: startHeight,
		Status:      StatusActive,
	}
}

// Accusation names a suspect, weapon and room together with the salt that
// blinded the case commitment.
type Accusation struct {
	Suspect uint32
	Weapon  uint32
	Room    uint32
	Salt    commitment.Salt
}

// Validate checks every component lies in its declared range. Validation
// runs before any hash work so malformed input never reaches the codec.
func (a Accusation) Validate() error {
	if a.Suspect == 0 || a.Suspect > MaxSuspectID {
		return apperrors.WithMetadata(apperrors.CodeInvalidAccusationID, "suspect id out of range",
			map[string]string{"Field": "suspect_id"})
	}
	if a.Weapon == 0 || a.Weapon > MaxWeaponID {
		return apperrors.WithMetadata(apperrors.CodeInvalidAccusationID, "weapon id out of range",
			map[string]string{"Field": "weapon_id"})
	}
	if a.Room == 0 || a.Room > MaxRoomID {
		return apperrors.WithMetadata(apperrors.CodeInvalidAccusationID, "room id out of range",
			map[string]string{"Field": "room_id"})
	}
	return nil
}

// Digest recomputes the commitment for this accusation.
func (a Accusation) Digest() commitment.Digest {
	return commitment.Commit([]uint32{a.Suspect, a.Weapon, a.Room}, a.Salt, "")
}

// RecordProgress overwrites the exploration counters. Monotone progress is
// the caller's responsibility; the record only keeps the latest report.
func (g *Game) RecordProgress(caller game.Identity, cluesInspected, roomsVisited uint32) error {
	if g.Status != StatusActive {
		return apperrors.New(apperrors.CodeGameNotActive, "game is not active")
	}
	if !g.Players.Contains(caller) {
		return apperrors.New(apperrors.CodeNotPlayer, "caller is not a participant")
	}
	g.CluesInspected = cluesInspected
	g.RoomsVisited = roomsVisited
	return nil
}

// ApplyAccusation verifies an accusation against the case commitment and
// applies the outcome: a match solves the game for the caller, a miss
// increments the wrong-accusation counter. The boolean is the protocol's
// answer, not an error channel.
func (g *Game) ApplyAccusation(caller game.Identity, accusation Accusation, caseCommitment commitment.Digest, height uint64) (bool, error) {
	if err := accusation.Validate(); err != nil {
		return false, err
	}
	if g.Status != StatusActive {
		return false, apperrors.New(apperrors.CodeGameNotActive, "game is not active")
	}
	if !g.Players.Contains(caller) {
		return false, apperrors.New(apperrors.CodeNotPlayer, "caller is not a participant")
	}

	if !commitment.Equal(accusation.Digest(), caseCommitment) {
		g.WrongAccusations++
		return false, nil
	}

	winner := caller
	g.Status = StatusSolved
	g.Winner = &winner
	g.SolveHeight = height
	return true, nil
}

// Abandon cancels an active game with no winner.
func (g *Game) Abandon() error {
	if g.Status != StatusActive {
		return apperrors.New(apperrors.CodeGameAlreadyEnded, "game already ended")
	}
	g.Status = StatusAbandoned
	return nil
}

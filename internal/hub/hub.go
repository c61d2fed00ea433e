// Package hub notifies the external ranking hub of session boundaries.
//
// Notifications are fire-and-forget: delivery failures are logged and never
// surfaced to the game engines, which must not fail an otherwise valid state
// transition because the hub was unreachable.
package hub

import (
	"context"
	"log"

	"github.com/louisbranch/zkgames/internal/game"
)

// Outcome reports how a session ended.
type Outcome struct {
	Winner    game.Identity
	PlayerOne bool // whether the first participant slot won
}

// Notifier receives session lifecycle notifications.
type Notifier interface {
	NotifyStart(ctx context.Context, sessionID uint32, participants game.Participants, stakes game.Stakes)
	NotifyEnd(ctx context.Context, sessionID uint32, outcome Outcome)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

// NotifyStart implements Notifier.
func (LogNotifier) NotifyStart(ctx context.Context, sessionID uint32, participants game.Participants, stakes game.Stakes) {
	log.Printf("hub session start session_id=%d p1=%s p2=%s p1_stake=%d p2_stake=%d",
		sessionID, participants.P1, participants.P2, stakes.P1, stakes.P2)
}

// NotifyEnd implements Notifier.
func (LogNotifier) NotifyEnd(ctx context.Context, sessionID uint32, outcome Outcome) {
	log.Printf("hub session end session_id=%d winner=%s player_one_won=%t",
		sessionID, outcome.Winner, outcome.PlayerOne)
}

// Noop drops all notifications.
type Noop struct{}

// NotifyStart implements Notifier.
func (Noop) NotifyStart(context.Context, uint32, game.Participants, game.Stakes) {}

// NotifyEnd implements Notifier.
func (Noop) NotifyEnd(context.Context, uint32, Outcome) {}

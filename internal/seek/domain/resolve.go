package domain

import (
	"math"
	"math/bits"

	"github.com/louisbranch/zkgames/internal/game"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
)

func absDiff(a, b uint32) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}

// distanceSquared is exact integer math. Each squared axis delta fits in
// a uint64; the sum saturates at MaxUint64, which preserves ordering for
// every reachable comparison.
func distanceSquared(a, b Point) uint64 {
	dx := absDiff(a.X, b.X)
	dy := absDiff(a.Y, b.Y)
	sum, carry := bits.Add64(dx*dx, dy*dy, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// ResolveWinner picks between two revealed guesses against the target:
//
//  1. if exactly one guess lands within the tolerance radius, it wins;
//  2. otherwise the strictly smaller squared distance wins;
//  3. on equal distances the commitment recorded at the lower or equal
//     height wins, so ties go to whoever locked in first.
func ResolveWinner(p1, p2 Point, h1, h2 uint64, target Point, tolerance uint32) game.Slot {
	d1 := distanceSquared(p1, target)
	d2 := distanceSquared(p2, target)
	limit := uint64(tolerance) * uint64(tolerance)

	in1 := d1 <= limit
	in2 := d2 <= limit
	if in1 != in2 {
		if in1 {
			return game.SlotP1
		}
		return game.SlotP2
	}
	if d1 != d2 {
		if d1 < d2 {
			return game.SlotP1
		}
		return game.SlotP2
	}
	if h1 <= h2 {
		return game.SlotP1
	}
	return game.SlotP2
}

// Resolve ends the session by opening the scene target and applying the
// winner rule. A resolved session cannot be resolved again, and both
// reveals must be present before the target reveal is even checked.
func (g *Game) Resolve(scene Scene, target Target) (game.Identity, error) {
	if g.Status.Terminal() {
		return "", apperrors.New(apperrors.CodeGameAlreadyEnded, "session already ended")
	}
	if !g.AllRevealed() {
		return "", apperrors.New(apperrors.CodeNotAllRevealed, "waiting for all reveals")
	}
	if err := scene.Open(target); err != nil {
		return "", err
	}
	slot := ResolveWinner(*g.P1.Reveal, *g.P2.Reveal, *g.P1.CommitHeight, *g.P2.CommitHeight, Point{X: target.X, Y: target.Y}, scene.Tolerance)
	winner := g.Players.P1
	if slot == game.SlotP2 {
		winner = g.Players.P2
	}
	g.Status = StatusResolved
	g.Winner = &winner
	return winner, nil
}

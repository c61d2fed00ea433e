package domain

// Score formula constants.
const (
	baseScore          int64 = 10000
	maxTimePenalty     int64 = 5000
	wrongAccusePenalty int64 = 500
	clueBonus          int64 = 100
	roomBonus          int64 = 50
)

// ComputeScore derives the outcome score for a solved game from its final
// counters. The result is deterministic and order-independent: only the
// final counter values matter, not the order they were reached in.
//
//	score = max(0, 10000 - min(elapsed, 5000) - 500*wrong + 100*clues + 50*rooms)
//
// Elapsed height saturates at zero when the start height exceeds the solve
// height, so sequence irregularities never produce a negative penalty.
func ComputeScore(g Game) int64 {
	var elapsed uint64
	if g.SolveHeight > g.StartHeight {
		elapsed = g.SolveHeight - g.StartHeight
	}

	timePenalty := int64(elapsed)
	if timePenalty > maxTimePenalty {
		timePenalty = maxTimePenalty
	}

	score := baseScore -
		timePenalty -
		int64(g.WrongAccusations)*wrongAccusePenalty +
		int64(g.CluesInspected)*clueBonus +
		int64(g.RoomsVisited)*roomBonus

	if score < 0 {
		return 0
	}
	return score
}

package domain

// PlayerStats is the per-identity leaderboard record, created lazily on a
// player's first solve and mutated only through the resolution path.
type PlayerStats struct {
	BestScore   int64
	CasesSolved uint32
	TotalGames  uint32
}

// ApplySolve folds one solved game into the stats. BestScore is monotone
// non-decreasing; the counters increment by exactly one per solve.
func (s *PlayerStats) ApplySolve(score int64) {
	s.CasesSolved++
	s.TotalGames++
	if score > s.BestScore {
		s.BestScore = score
	}
}

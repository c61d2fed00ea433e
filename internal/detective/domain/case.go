package domain

import "github.com/louisbranch/zkgames/internal/commitment"

// Case binds a deduction puzzle to its solution commitment. The commitment
// is computed off-line by the case author; the solution itself never reaches
// this system. Cases are immutable once created.
type Case struct {
	ID         uint32
	Commitment commitment.Digest
}

package domain

import (
	"github.com/louisbranch/zkgames/internal/commitment"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
)

// Scene is a durable puzzle definition. The commitment binds the hidden
// target coordinates without a binder, so the operator can open it at
// resolution time with just the coordinates and salt.
type Scene struct {
	ID               uint32
	TargetCommitment commitment.Digest
	Tolerance        uint32
	Active           bool
}

// Target is an opened scene commitment: the hidden coordinates plus the
// salt used when the scene was created.
type Target struct {
	X    uint32
	Y    uint32
	Salt commitment.Salt
}

// Digest recomputes the commitment for the target.
func (t Target) Digest() commitment.Digest {
	return commitment.Commit([]uint32{t.X, t.Y}, t.Salt, "")
}

// Open verifies the target against the scene commitment.
func (s Scene) Open(t Target) error {
	if !commitment.Equal(t.Digest(), s.TargetCommitment) {
		return apperrors.New(apperrors.CodeInvalidTargetReveal, "target reveal does not match scene commitment")
	}
	return nil
}

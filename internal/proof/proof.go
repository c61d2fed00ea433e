// Package proof defines the external zero-knowledge proof oracle.
//
// The oracle is an opaque boolean gate: an extended deployment can swap the
// hash-based commitment checks for proof verification without changing the
// session state machines. The verifier itself is vendored outside this
// repository; only its contract lives here.
package proof

import (
	"context"

	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
)

// ErrInvalidProof is returned when the oracle rejects a proof.
var ErrInvalidProof = apperrors.New(apperrors.CodeInvalidProof, "proof verification failed")

// Verifier checks a proof against its public inputs.
type Verifier interface {
	Verify(ctx context.Context, proof []byte, publicInputs [][]byte) error
}

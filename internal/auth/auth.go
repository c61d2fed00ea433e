// Package auth defines the authorization oracle consulted by the game engines.
//
// The engines never inspect how authorization is proven; they hand an opaque
// credential to an Authorizer and act on the verdict. The production
// implementation verifies signed grants (see grant.go); tests substitute
// an AllowAll or scripted fake.
package auth

import (
	"context"

	"github.com/louisbranch/zkgames/internal/game"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
)

// ErrUnauthorized is returned when a credential does not prove the claim.
var ErrUnauthorized = apperrors.New(apperrors.CodeUnauthorized, "credential does not authorize this operation")

// Authorizer proves that a caller controls an identity for a given purpose.
type Authorizer interface {
	// RequireAdmin verifies the credential carries the administrator role.
	RequireAdmin(ctx context.Context, credential string) error

	// RequireStake verifies the credential proves identity authorized the
	// stated stake for the session.
	RequireStake(ctx context.Context, credential string, identity game.Identity, sessionID uint32, stake int64) error
}

// AllowAll authorizes every request. Intended for local development only.
type AllowAll struct{}

// RequireAdmin implements Authorizer.
func (AllowAll) RequireAdmin(context.Context, string) error { return nil }

// RequireStake implements Authorizer.
func (AllowAll) RequireStake(context.Context, string, game.Identity, uint32, int64) error {
	return nil
}

// Package storage defines the persistence contracts the game engines consume.
//
// Two namespaces with different lifetimes back the system: durable records
// (cases, scenes, player stats) live until deleted; session records expire
// under a TTL policy and become invisible to reads once expired. Every
// Update runs its mutation inside one storage transaction so concurrent
// operations on the same session serialize (single writer per record).
package storage

import (
	"context"
	"errors"
	"time"

	detectivedomain "github.com/louisbranch/zkgames/internal/detective/domain"
	"github.com/louisbranch/zkgames/internal/game"
	seekdomain "github.com/louisbranch/zkgames/internal/seek/domain"
)

// ErrNotFound indicates a requested record is missing or expired.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a create collided with an existing record.
var ErrAlreadyExists = errors.New("record already exists")

// CaseStore persists immutable case definitions.
type CaseStore interface {
	CreateCase(ctx context.Context, c detectivedomain.Case) error
	GetCase(ctx context.Context, id uint32) (detectivedomain.Case, error)
	HasCase(ctx context.Context, id uint32) (bool, error)
}

// SceneStore persists scene definitions. Only the active flag is mutable.
type SceneStore interface {
	CreateScene(ctx context.Context, s seekdomain.Scene) error
	GetScene(ctx context.Context, id uint32) (seekdomain.Scene, error)
	SetSceneActive(ctx context.Context, id uint32, active bool) error
}

// DetectiveGameStore persists accusation-protocol sessions with expiry.
type DetectiveGameStore interface {
	CreateDetectiveGame(ctx context.Context, g detectivedomain.Game, ttl time.Duration) error
	GetDetectiveGame(ctx context.Context, sessionID uint32) (detectivedomain.Game, error)
	// UpdateDetectiveGame loads the session, applies mutate, and writes the
	// result back in one transaction, extending the record's TTL. A mutate
	// error aborts the write and is returned unchanged.
	UpdateDetectiveGame(ctx context.Context, sessionID uint32, ttl time.Duration, mutate func(*detectivedomain.Game) error) (detectivedomain.Game, error)
}

// SeekGameStore persists commit-reveal sessions with expiry.
type SeekGameStore interface {
	CreateSeekGame(ctx context.Context, g seekdomain.Game, ttl time.Duration) error
	GetSeekGame(ctx context.Context, sessionID uint32) (seekdomain.Game, error)
	UpdateSeekGame(ctx context.Context, sessionID uint32, ttl time.Duration, mutate func(*seekdomain.Game) error) (seekdomain.Game, error)
}

// PlayerStatsStore persists leaderboard records keyed by identity.
type PlayerStatsStore interface {
	// GetPlayerStats returns zero stats when the player has no record yet.
	GetPlayerStats(ctx context.Context, player game.Identity) (detectivedomain.PlayerStats, error)
	// UpdatePlayerStats upserts the record, creating zero stats lazily
	// before applying mutate.
	UpdatePlayerStats(ctx context.Context, player game.Identity, mutate func(*detectivedomain.PlayerStats) error) (detectivedomain.PlayerStats, error)
}

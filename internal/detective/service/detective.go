// Package service orchestrates the accusation protocol: it authorizes
// callers, loads and mutates session records transactionally, and settles
// scores and leaderboard stats when a game is solved.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/louisbranch/zkgames/internal/auth"
	"github.com/louisbranch/zkgames/internal/detective/domain"
	"github.com/louisbranch/zkgames/internal/game"
	"github.com/louisbranch/zkgames/internal/hub"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
	"github.com/louisbranch/zkgames/internal/sequence"
	"github.com/louisbranch/zkgames/internal/storage"
)

// DefaultSessionTTL matches the ledger retention window of the original
// deployment: sessions idle for 30 days expire and vanish from reads.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Stores bundles the persistence dependencies of the service.
type Stores struct {
	Cases storage.CaseStore
	Games storage.DetectiveGameStore
	Stats storage.PlayerStatsStore
}

// Service implements the accusation protocol operations.
type Service struct {
	stores     Stores
	authorizer auth.Authorizer
	notifier   hub.Notifier
	source     sequence.Source
	sessionTTL time.Duration
}

// Option configures optional service behavior.
type Option func(*Service)

// WithSessionTTL overrides the session expiry window.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) { s.sessionTTL = ttl }
}

// New creates the service. All collaborators are required.
func New(stores Stores, authorizer auth.Authorizer, notifier hub.Notifier, source sequence.Source, opts ...Option) *Service {
	s := &Service{
		stores:     stores,
		authorizer: authorizer,
		notifier:   notifier,
		source:     source,
		sessionTTL: DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCase registers a new case. Administrator only; case identifiers are
// claimed first-wins and never reassigned.
func (s *Service) CreateCase(ctx context.Context, credential string, c domain.Case) error {
	if err := s.authorizer.RequireAdmin(ctx, credential); err != nil {
		return err
	}
	if err := s.stores.Cases.CreateCase(ctx, c); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return apperrors.Wrap(apperrors.CodeCaseAlreadyExists, "case id already claimed", err)
		}
		return err
	}
	log.Printf("case created case_id=%d commitment=%s", c.ID, c.Commitment)
	return nil
}

// GetCase loads a case definition.
func (s *Service) GetCase(ctx context.Context, id uint32) (domain.Case, error) {
	c, err := s.stores.Cases.GetCase(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Case{}, apperrors.Wrap(apperrors.CodeCaseNotFound, "case not found", err)
		}
		return domain.Case{}, err
	}
	return c, nil
}

// StartGameRequest carries everything needed to open a session. Each
// credential must prove its player authorized the stated stake for this
// session.
type StartGameRequest struct {
	SessionID    uint32
	CaseID       uint32
	Players      game.Participants
	Stakes       game.Stakes
	P1Credential string
	P2Credential string
}

// StartGame opens a new session against an existing case and announces it
// to the ranking hub. The case and the session id are checked before any
// stake is authorized, so a doomed request never spends a grant.
func (s *Service) StartGame(ctx context.Context, req StartGameRequest) (domain.Game, error) {
	if !req.Players.P1.Valid() || !req.Players.P2.Valid() {
		return domain.Game{}, apperrors.New(apperrors.CodeInvalidInput, "both participant identities are required")
	}

	exists, err := s.stores.Cases.HasCase(ctx, req.CaseID)
	if err != nil {
		return domain.Game{}, err
	}
	if !exists {
		return domain.Game{}, apperrors.New(apperrors.CodeCaseNotFound, "case not found")
	}
	if _, err := s.stores.Games.GetDetectiveGame(ctx, req.SessionID); err == nil {
		return domain.Game{}, apperrors.New(apperrors.CodeSessionAlreadyExists, "session id already in use")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return domain.Game{}, err
	}

	if err := s.authorizer.RequireStake(ctx, req.P1Credential, req.Players.P1, req.SessionID, req.Stakes.P1); err != nil {
		return domain.Game{}, err
	}
	if err := s.authorizer.RequireStake(ctx, req.P2Credential, req.Players.P2, req.SessionID, req.Stakes.P2); err != nil {
		return domain.Game{}, err
	}

	g := domain.NewGame(req.SessionID, req.CaseID, req.Players, req.Stakes, s.source.Height())
	if err := s.stores.Games.CreateDetectiveGame(ctx, g, s.sessionTTL); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return domain.Game{}, apperrors.Wrap(apperrors.CodeSessionAlreadyExists, "session id already in use", err)
		}
		return domain.Game{}, err
	}

	s.notifier.NotifyStart(ctx, g.SessionID, g.Players, g.Stakes)
	log.Printf("detective game started session_id=%d case_id=%d p1=%s p2=%s", g.SessionID, g.CaseID, g.Players.P1, g.Players.P2)
	return g, nil
}

// UpdateProgress records the caller's latest exploration counters.
func (s *Service) UpdateProgress(ctx context.Context, sessionID uint32, caller game.Identity, cluesInspected, roomsVisited uint32) (domain.Game, error) {
	g, err := s.stores.Games.UpdateDetectiveGame(ctx, sessionID, s.sessionTTL, func(g *domain.Game) error {
		return g.RecordProgress(caller, cluesInspected, roomsVisited)
	})
	if err != nil {
		return domain.Game{}, s.gameErr(err)
	}
	return g, nil
}

// AccusationResult reports the outcome of an accusation. Score is only
// meaningful when Correct is true.
type AccusationResult struct {
	Correct bool
	Score   int64
	Game    domain.Game
}

// Accuse checks the caller's accusation against the case commitment. A
// wrong accusation is a recorded miss, not an error. A correct one ends
// the game, computes the score and folds it into the winner's stats.
func (s *Service) Accuse(ctx context.Context, sessionID uint32, caller game.Identity, accusation domain.Accusation) (AccusationResult, error) {
	current, err := s.stores.Games.GetDetectiveGame(ctx, sessionID)
	if err != nil {
		return AccusationResult{}, s.gameErr(err)
	}
	c, err := s.stores.Cases.GetCase(ctx, current.CaseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return AccusationResult{}, apperrors.Wrap(apperrors.CodeCaseNotFound, "case not found", err)
		}
		return AccusationResult{}, err
	}

	var correct bool
	height := s.source.Height()
	g, err := s.stores.Games.UpdateDetectiveGame(ctx, sessionID, s.sessionTTL, func(g *domain.Game) error {
		var applyErr error
		correct, applyErr = g.ApplyAccusation(caller, accusation, c.Commitment, height)
		return applyErr
	})
	if err != nil {
		return AccusationResult{}, s.gameErr(err)
	}

	result := AccusationResult{Correct: correct, Game: g}
	if !correct {
		log.Printf("wrong accusation session_id=%d caller=%s total_wrong=%d", sessionID, caller, g.WrongAccusations)
		return result, nil
	}

	result.Score = domain.ComputeScore(g)
	if _, err := s.stores.Stats.UpdatePlayerStats(ctx, caller, func(stats *domain.PlayerStats) error {
		stats.ApplySolve(result.Score)
		return nil
	}); err != nil {
		// The game is already solved; a stats failure must not undo it.
		log.Printf("stats update failed session_id=%d player=%s err=%v", sessionID, caller, err)
	}
	s.notifier.NotifyEnd(ctx, sessionID, hub.Outcome{Winner: caller, PlayerOne: g.Players.SlotOf(caller) == game.SlotP1})
	log.Printf("detective game solved session_id=%d winner=%s score=%d", sessionID, caller, result.Score)
	return result, nil
}

// AbandonGame cancels an active session. Administrator only.
func (s *Service) AbandonGame(ctx context.Context, credential string, sessionID uint32) (domain.Game, error) {
	if err := s.authorizer.RequireAdmin(ctx, credential); err != nil {
		return domain.Game{}, err
	}
	g, err := s.stores.Games.UpdateDetectiveGame(ctx, sessionID, s.sessionTTL, func(g *domain.Game) error {
		return g.Abandon()
	})
	if err != nil {
		return domain.Game{}, s.gameErr(err)
	}
	log.Printf("detective game abandoned session_id=%d", sessionID)
	return g, nil
}

// GetGame loads a session record.
func (s *Service) GetGame(ctx context.Context, sessionID uint32) (domain.Game, error) {
	g, err := s.stores.Games.GetDetectiveGame(ctx, sessionID)
	if err != nil {
		return domain.Game{}, s.gameErr(err)
	}
	return g, nil
}

// GetPlayerStats loads a player's leaderboard record. Players without a
// record read as zero stats.
func (s *Service) GetPlayerStats(ctx context.Context, player game.Identity) (domain.PlayerStats, error) {
	return s.stores.Stats.GetPlayerStats(ctx, player)
}

func (s *Service) gameErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.Wrap(apperrors.CodeGameNotFound, "game not found", err)
	}
	return err
}

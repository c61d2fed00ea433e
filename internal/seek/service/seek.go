// Package service orchestrates the commit-reveal protocol: it authorizes
// callers, drives sessions through the commit, reveal and resolve phases,
// and reports session boundaries to the ranking hub.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/louisbranch/zkgames/internal/auth"
	"github.com/louisbranch/zkgames/internal/commitment"
	"github.com/louisbranch/zkgames/internal/game"
	"github.com/louisbranch/zkgames/internal/hub"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
	"github.com/louisbranch/zkgames/internal/proof"
	"github.com/louisbranch/zkgames/internal/seek/domain"
	"github.com/louisbranch/zkgames/internal/sequence"
	"github.com/louisbranch/zkgames/internal/storage"
)

// DefaultSessionTTL is the expiry window for idle sessions.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Stores bundles the persistence dependencies of the service.
type Stores struct {
	Scenes storage.SceneStore
	Games  storage.SeekGameStore
}

// Service implements the commit-reveal protocol operations.
type Service struct {
	stores     Stores
	authorizer auth.Authorizer
	notifier   hub.Notifier
	source     sequence.Source
	sessionTTL time.Duration
	verifier   proof.Verifier
}

// Option configures optional service behavior.
type Option func(*Service)

// WithSessionTTL overrides the session expiry window.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) { s.sessionTTL = ttl }
}

// WithProofVerifier enables proof-carrying reveals: when a verifier is
// configured and the caller supplies a proof, the proof must verify
// against the caller's commitment before the reveal is accepted.
func WithProofVerifier(verifier proof.Verifier) Option {
	return func(s *Service) { s.verifier = verifier }
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

// CreateScene registers a new scene. Administrator only.
func (s *Service) CreateScene(ctx context.Context, credential string, scene domain.Scene) error {
	if err := s.authorizer.RequireAdmin(ctx, credential); err != nil {
		return err
	}
	if err := s.stores.Scenes.CreateScene(ctx, scene); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return apperrors.Wrap(apperrors.CodeSceneAlreadyExists, "scene id already claimed", err)
		}
		return err
	}
	log.Printf("scene created scene_id=%d tolerance=%d", scene.ID, scene.Tolerance)
	return nil
}

// DeactivateScene blocks new sessions on the scene. Sessions already in
// flight keep running; the scene record stays readable so they can still
// resolve.
func (s *Service) DeactivateScene(ctx context.Context, credential string, sceneID uint32) error {
	if err := s.authorizer.RequireAdmin(ctx, credential); err != nil {
		return err
	}
	if err := s.stores.Scenes.SetSceneActive(ctx, sceneID, false); err != nil {
		return s.sceneErr(err)
	}
	log.Printf("scene deactivated scene_id=%d", sceneID)
	return nil
}

// GetScene loads a scene definition.
func (s *Service) GetScene(ctx context.Context, sceneID uint32) (domain.Scene, error) {
	scene, err := s.stores.Scenes.GetScene(ctx, sceneID)
	if err != nil {
		return domain.Scene{}, s.sceneErr(err)
	}
	return scene, nil
}

// StartGameRequest carries everything needed to open a session.
type StartGameRequest struct {
	SessionID    uint32
	SceneID      uint32
	Players      game.Participants
	Stakes       game.Stakes
	P1Credential string
	P2Credential string
}

// StartGame opens a new session against an active scene and announces it
// to the ranking hub. The scene and the session id are checked before any
// stake is authorized, so a doomed request never spends a grant.
func (s *Service) StartGame(ctx context.Context, req StartGameRequest) (domain.Game, error) {
	if !req.Players.P1.Valid() || !req.Players.P2.Valid() {
		return domain.Game{}, apperrors.New(apperrors.CodeInvalidInput, "both participant identities are required")
	}

	scene, err := s.stores.Scenes.GetScene(ctx, req.SceneID)
	if err != nil {
		return domain.Game{}, s.sceneErr(err)
	}
	if !scene.Active {
		return domain.Game{}, apperrors.New(apperrors.CodeSceneInactive, "scene does not accept new sessions")
	}
	if _, err := s.stores.Games.GetSeekGame(ctx, req.SessionID); err == nil {
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

	g, err := domain.NewGame(req.SessionID, req.SceneID, req.Players, req.Stakes, s.source.Height())
	if err != nil {
		return domain.Game{}, err
	}
	if err := s.stores.Games.CreateSeekGame(ctx, g, s.sessionTTL); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return domain.Game{}, apperrors.Wrap(apperrors.CodeSessionAlreadyExists, "session id already in use", err)
		}
		return domain.Game{}, err
	}

	s.notifier.NotifyStart(ctx, g.SessionID, g.Players, g.Stakes)
	log.Printf("seek game started session_id=%d scene_id=%d p1=%s p2=%s", g.SessionID, g.SceneID, g.Players.P1, g.Players.P2)
	return g, nil
}

// SubmitCommitment records the caller's guess digest at the current height.
func (s *Service) SubmitCommitment(ctx context.Context, sessionID uint32, caller game.Identity, digest commitment.Digest) (domain.Game, error) {
	height := s.source.Height()
	g, err := s.stores.Games.UpdateSeekGame(ctx, sessionID, s.sessionTTL, func(g *domain.Game) error {
		return g.ApplyCommitment(caller, digest, height)
	})
	if err != nil {
		return domain.Game{}, s.gameErr(err)
	}
	log.Printf("commitment recorded session_id=%d player=%s all_committed=%t", sessionID, caller, g.AllCommitted())
	return g, nil
}

// Reveal opens the caller's commitment. The proof argument is optional;
// when present and a verifier is configured it is checked against the
// caller's stored commitment before the reveal is applied.
func (s *Service) Reveal(ctx context.Context, sessionID uint32, caller game.Identity, guess domain.Guess, proofBytes []byte) (domain.Game, error) {
	if s.verifier != nil && len(proofBytes) > 0 {
		current, err := s.stores.Games.GetSeekGame(ctx, sessionID)
		if err != nil {
			return domain.Game{}, s.gameErr(err)
		}
		slot := current.Players.SlotOf(caller)
		if slot == game.SlotNone {
			return domain.Game{}, apperrors.New(apperrors.CodeNotPlayer, "caller is not a participant")
		}
		var publicInputs [][]byte
		if st := current.P1; slot == game.SlotP1 && st.Commitment != nil {
			publicInputs = append(publicInputs, st.Commitment[:])
		}
		if st := current.P2; slot == game.SlotP2 && st.Commitment != nil {
			publicInputs = append(publicInputs, st.Commitment[:])
		}
		if err := s.verifier.Verify(ctx, proofBytes, publicInputs); err != nil {
			return domain.Game{}, err
		}
	}

	g, err := s.stores.Games.UpdateSeekGame(ctx, sessionID, s.sessionTTL, func(g *domain.Game) error {
		return g.ApplyReveal(caller, guess)
	})
	if err != nil {
		return domain.Game{}, s.gameErr(err)
	}
	log.Printf("reveal recorded session_id=%d player=%s all_revealed=%t", sessionID, caller, g.AllRevealed())
	return g, nil
}

// Resolve ends the session. Administrator only: the target reveal opens
// the scene commitment, and the winner rule runs against both revealed
// guesses. Session preconditions are checked before the target reveal,
// so a finished or incomplete session reports its own state even when
// the supplied target is stale.
func (s *Service) Resolve(ctx context.Context, credential string, sessionID uint32, target domain.Target) (domain.Game, error) {
	if err := s.authorizer.RequireAdmin(ctx, credential); err != nil {
		return domain.Game{}, err
	}
	current, err := s.stores.Games.GetSeekGame(ctx, sessionID)
	if err != nil {
		return domain.Game{}, s.gameErr(err)
	}
	scene, err := s.stores.Scenes.GetScene(ctx, current.SceneID)
	if err != nil {
		return domain.Game{}, s.sceneErr(err)
	}

	var winner game.Identity
	g, err := s.stores.Games.UpdateSeekGame(ctx, sessionID, s.sessionTTL, func(g *domain.Game) error {
		var resolveErr error
		winner, resolveErr = g.Resolve(scene, target)
		return resolveErr
	})
	if err != nil {
		return domain.Game{}, s.gameErr(err)
	}

	s.notifier.NotifyEnd(ctx, sessionID, hub.Outcome{Winner: winner, PlayerOne: g.Players.SlotOf(winner) == game.SlotP1})
	log.Printf("seek game resolved session_id=%d winner=%s", sessionID, winner)
	return g, nil
}

// GetGame loads a session record.
func (s *Service) GetGame(ctx context.Context, sessionID uint32) (domain.Game, error) {
	g, err := s.stores.Games.GetSeekGame(ctx, sessionID)
	if err != nil {
		return domain.Game{}, s.gameErr(err)
	}
	return g, nil
}

func (s *Service) sceneErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.Wrap(apperrors.CodeSceneNotFound, "scene not found", err)
	}
	return err
}

func (s *Service) gameErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.Wrap(apperrors.CodeGameNotFound, "game not found", err)
	}
	return err
}

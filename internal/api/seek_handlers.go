package api

import (
	"encoding/hex"
	"net/http"

	"github.com/louisbranch/zkgames/internal/commitment"
	"github.com/louisbranch/zkgames/internal/game"
	"github.com/louisbranch/zkgames/internal/seek/domain"
	seekservice "github.com/louisbranch/zkgames/internal/seek/service"
)

type createSceneRequest struct {
	ID               uint32 `json:"id"`
	TargetCommitment string `json:"target_commitment"`
	Tolerance        uint32 `json:"tolerance"`
}

func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	var req createSceneRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}
	digest, err := commitment.ParseDigest(req.TargetCommitment)
	if err != nil {
		s.writeBadRequest(w, "invalid commitment encoding")
		return
	}

	scene := domain.Scene{ID: req.ID, TargetCommitment: digest, Tolerance: req.Tolerance, Active: true}
	if err := s.seek.CreateScene(r.Context(), credential(r), scene); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"id": req.ID})
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeBadRequest(w, "invalid scene id")
		return
	}
	scene, err := s.seek.GetScene(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":                scene.ID,
		"target_commitment": scene.TargetCommitment.String(),
		"tolerance":         scene.Tolerance,
		"active":            scene.Active,
	})
}

func (s *Server) handleDeactivateScene(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeBadRequest(w, "invalid scene id")
		return
	}
	if err := s.seek.DeactivateScene(r.Context(), credential(r), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": false})
}

func (s *Server) handleStartSeekGame(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}

	g, err := s.seek.StartGame(r.Context(), seekservice.StartGameRequest{
		SessionID:    req.SessionID,
		SceneID:      req.SceneID,
		Players:      game.Participants{P1: game.Identity(req.P1), P2: game.Identity(req.P2)},
		Stakes:       game.Stakes{P1: req.P1Stake, P2: req.P2Stake},
		P1Credential: req.P1Credential,
		P2Credential: req.P2Credential,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, seekGameResponse(g))
}

func (s *Server) handleGetSeekGame(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeBadRequest(w, "invalid session id")
		return
	}
	g, err := s.seek.GetGame(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, seekGameResponse(g))
}

type commitRequest struct {
	Player     string `json:"player"`
	Commitment string `json:"commitment"`
}

func (s *Server) handleSubmitCommitment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeBadRequest(w, "invalid session id")
		return
	}
	var req commitRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}
	digest, err := commitment.ParseDigest(req.Commitment)
	if err != nil {
		s.writeBadRequest(w, "invalid commitment encoding")
		return
	}

	g, err := s.seek.SubmitCommitment(r.Context(), id, game.Identity(req.Player), digest)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, seekGameResponse(g))
}

type revealRequest struct {
	Player string `json:"player"`
	X      uint32 `json:"x"`
	Y      uint32 `json:"y"`
	Salt   string `json:"salt"`
	Proof  string `json:"proof,omitempty"`
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeBadRequest(w, "invalid session id")
		return
	}
	var req revealRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}
	salt, err := commitment.ParseSalt(req.Salt)
	if err != nil {
		s.writeBadRequest(w, "invalid salt encoding")
		return
	}
	var proofBytes []byte
	if req.Proof != "" {
		proofBytes, err = hex.DecodeString(req.Proof)
		if err != nil {
			s.writeBadRequest(w, "invalid proof encoding")
			return
		}
	}

	g, err := s.seek.Reveal(r.Context(), id, game.Identity(req.Player), domain.Guess{X: req.X, Y: req.Y, Salt: salt}, proofBytes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, seekGameResponse(g))
}

type resolveRequest struct {
	X    uint32 `json:"x"`
	Y    uint32 `json:"y"`
	Salt string `json:"salt"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeBadRequest(w, "invalid session id")
		return
	}
	var req resolveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}
	salt, err := commitment.ParseSalt(req.Salt)
	if err != nil {
		s.writeBadRequest(w, "invalid salt encoding")
		return
	}

	g, err := s.seek.Resolve(r.Context(), credential(r), id, domain.Target{X: req.X, Y: req.Y, Salt: salt})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, seekGameResponse(g))
}

func seekGameResponse(g domain.Game) map[string]any {
	resp := map[string]any{
		"session_id":   g.SessionID,
		"scene_id":     g.SceneID,
		"p1":           string(g.Players.P1),
		"p2":           string(g.Players.P2),
		"p1_stake":     g.Stakes.P1,
		"p2_stake":     g.Stakes.P2,
		"start_height": g.StartHeight,
		"status":       g.Status.String(),
		"p1_state":     slotResponse(g.P1),
		"p2_state":     slotResponse(g.P2),
	}
	if g.Winner != nil {
		resp["winner"] = string(*g.Winner)
	}
	return resp
}

func slotResponse(state domain.PlayerState) map[string]any {
	resp := map[string]any{
		"committed": state.Committed(),
		"revealed":  state.Revealed(),
	}
	if state.Commitment != nil {
		resp["commitment"] = state.Commitment.String()
	}
	if state.CommitHeight != nil {
		resp["commit_height"] = *state.CommitHeight
	}
	if state.Reveal != nil {
		resp["x"] = state.Reveal.X
		resp["y"] = state.Reveal.Y
	}
	return resp
}

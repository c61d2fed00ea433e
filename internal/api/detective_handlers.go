package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/louisbranch/zkgames/internal/commitment"
	"github.com/louisbranch/zkgames/internal/detective/domain"
	detectiveservice "github.com/louisbranch/zkgames/internal/detective/service"
	"github.com/louisbranch/zkgames/internal/game"
)

type createCaseRequest struct {
	ID         uint32 `json:"id"`
	Commitment string `json:"commitment"`
}

func (s *Server) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}
	digest, err := commitment.ParseDigest(req.Commitment)
	if err != nil {
		s.writeBadRequest(w, "invalid commitment encoding")
		return
	}

	if err := s.detective.CreateCase(r.Context(), credential(r), domain.Case{ID: req.ID, Commitment: digest}); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"id": req.ID})
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeBadRequest(w, "invalid case id")
		return
	}
	c, err := s.detective.GetCase(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":         c.ID,
		"commitment": c.Commitment.String(),
	})
}

type startGameRequest struct {
	SessionID    uint32 `json:"session_id"`
	CaseID       uint32 `json:"case_id"`
	SceneID      uint32 `json:"scene_id"`
	P1           string `json:"p1"`
	P2           string `json:"p2"`
	P1Stake      int64  `json:"p1_stake"`
	P2Stake      int64  `json:"p2_stake"`
	P1Credential string `json:"p1_credential"`
	P2Credential string `json:"p2_credential"`
}

func (s *Server) handleStartDetectiveGame(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}

	g, err := s.detective.StartGame(r.Context(), detectiveservice.StartGameRequest{
		SessionID:    req.SessionID,
		CaseID:       req.CaseID,
		Players:      game.Participants{P1: game.Identity(req.P1), P2: game.Identity(req.P2)},
		Stakes:       game.Stakes{P1: req.P1Stake, P2: req.P2Stake},
		P1Credential: req.P1Credential,
		P2Credential: req.P2Credential,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, detectiveGameResponse(g))
}

func (s *Server) handleGetDetectiveGame(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeBadRequest(w, "invalid session id")
		return
	}
	g, err := s.detective.GetGame(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detectiveGameResponse(g))
}

type progressRequest struct {
	Player         string `json:"player"`
	CluesInspected uint32 `json:"clues_inspected"`
	RoomsVisited   uint32 `json:"rooms_visited"`
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeBadRequest(w, "invalid session id")
		return
	}
	var req progressRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}

	g, err := s.detective.UpdateProgress(r.Context(), id, game.Identity(req.Player), req.CluesInspected, req.RoomsVisited)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detectiveGameResponse(g))
}

type accuseRequest struct {
	Player  string `json:"player"`
	Suspect uint32 `json:"suspect_id"`
	Weapon  uint32 `json:"weapon_id"`
	Room    uint32 `json:"room_id"`
	Salt    string `json:"salt"`
}

func (s *Server) handleAccuse(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeBadRequest(w, "invalid session id")
		return
	}
	var req accuseRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}
	salt, err := commitment.ParseSalt(req.Salt)
	if err != nil {
		s.writeBadRequest(w, "invalid salt encoding")
		return
	}

	result, err := s.detective.Accuse(r.Context(), id, game.Identity(req.Player), domain.Accusation{
		Suspect: req.Suspect,
		Weapon:  req.Weapon,
		Room:    req.Room,
		Salt:    salt,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"correct": result.Correct,
		"score":   result.Score,
		"game":    detectiveGameResponse(result.Game),
	})
}

func (s *Server) handleAbandonGame(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeBadRequest(w, "invalid session id")
		return
	}
	g, err := s.detective.AbandonGame(r.Context(), credential(r), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detectiveGameResponse(g))
}

func (s *Server) handleGetPlayerStats(w http.ResponseWriter, r *http.Request) {
	player := game.Identity(chi.URLParam(r, "id"))
	if !player.Valid() {
		s.writeBadRequest(w, "invalid player identity")
		return
	}
	stats, err := s.detective.GetPlayerStats(r.Context(), player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"player":       string(player),
		"best_score":   stats.BestScore,
		"cases_solved": stats.CasesSolved,
		"total_games":  stats.TotalGames,
	})
}

func detectiveGameResponse(g domain.Game) map[string]any {
	resp := map[string]any{
		"session_id":        g.SessionID,
		"case_id":           g.CaseID,
		"p1":                string(g.Players.P1),
		"p2":                string(g.Players.P2),
		"p1_stake":          g.Stakes.P1,
		"p2_stake":          g.Stakes.P2,
		"start_height":      g.StartHeight,
		"solve_height":      g.SolveHeight,
		"clues_inspected":   g.CluesInspected,
		"rooms_visited":     g.RoomsVisited,
		"wrong_accusations": g.WrongAccusations,
		"status":            g.Status.String(),
	}
	if g.Winner != nil {
		resp["winner"] = string(*g.Winner)
	}
	return resp
}

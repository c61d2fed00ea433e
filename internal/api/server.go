// Package api exposes both game engines over an HTTP JSON API.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	detectiveservice "github.com/louisbranch/zkgames/internal/detective/service"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
	seekservice "github.com/louisbranch/zkgames/internal/seek/service"
)

// Server handles HTTP requests for both protocols.
type Server struct {
	detective *detectiveservice.Service
	seek      *seekservice.Service
}

// NewServer creates the API server.
func NewServer(detective *detectiveservice.Service, seek *seekservice.Service) *Server {
	return &Server{detective: detective, seek: seek}
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Heartbeat("/health"))

	r.Route("/detective", func(r chi.Router) {
		r.Post("/cases", s.handleCreateCase)
		r.Get("/cases/{id}", s.handleGetCase)
		r.Post("/games", s.handleStartDetectiveGame)
		r.Get("/games/{id}", s.handleGetDetectiveGame)
		r.Post("/games/{id}/progress", s.handleUpdateProgress)
		r.Post("/games/{id}/accuse", s.handleAccuse)
		r.Post("/games/{id}/abandon", s.handleAbandonGame)
		r.Get("/players/{id}/stats", s.handleGetPlayerStats)
	})

	r.Route("/seek", func(r chi.Router) {
		r.Post("/scenes", s.handleCreateScene)
		r.Get("/scenes/{id}", s.handleGetScene)
		r.Post("/scenes/{id}/deactivate", s.handleDeactivateScene)
		r.Post("/games", s.handleStartSeekGame)
		r.Get("/games/{id}", s.handleGetSeekGame)
		r.Post("/games/{id}/commit", s.handleSubmitCommitment)
		r.Post("/games/{id}/reveal", s.handleReveal)
		r.Post("/games/{id}/resolve", s.handleResolve)
	})

	return otelhttp.NewHandler(r, "zkgames.api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps a domain error onto its HTTP status and a stable error
// code so clients can branch without parsing messages.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	payload := map[string]any{
		"error": err.Error(),
		"code":  string(code),
	}
	if e, ok := err.(*apperrors.Error); ok && len(e.Metadata) > 0 {
		payload["metadata"] = e.Metadata
	}
	s.writeJSON(w, code.HTTPStatus(), payload)
}

// writeBadRequest reports malformed transport-level input.
func (s *Server) writeBadRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": message,
		"code":  string(apperrors.CodeInvalidInput),
	})
}

// idParam parses the {id} path parameter as a 32-bit unsigned integer.
func idParam(r *http.Request) (uint32, error) {
	raw := chi.URLParam(r, "id")
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(value), nil
}

// credential extracts the bearer credential, if any. Operations that do not
// require authorization ignore it.
func credential(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

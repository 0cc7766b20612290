package oracle

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes any Oracle implementation over the HTTP JSON transport
// that Client speaks. cmd/oracled serves the reference heuristic this way.
type Server struct {
	router chi.Router
	oracle Oracle
	logger *slog.Logger
}

// NewServer creates a server with all routes registered.
func NewServer(o Oracle, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		oracle: o,
		logger: logger.With("component", "oracle-server"),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Post("/v1/decide", s.handleDecide)
	s.router.Post("/v1/reward", s.handleReward)
	s.router.Post("/v1/retrain", s.handleRetrain)
	s.router.Get("/v1/health", s.handleHealth)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid decide request: "+err.Error())
		return
	}

	action, err := s.oracle.Decide(r.Context(), req.State)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, decideResponse{Action: action})
}

func (s *Server) handleReward(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid reward request: "+err.Error())
		return
	}

	if err := s.oracle.ReportReward(r.Context(), req.TaskID, req.Reward); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleRetrain(w http.ResponseWriter, r *http.Request) {
	var req retrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid retrain request: "+err.Error())
		return
	}

	if err := s.oracle.Retrain(r.Context(), req.TaskID, req.State); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.logger.Warn("request failed", "code", code, "error", msg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}

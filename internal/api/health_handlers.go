package api

import (
	"net/http"

	"github.com/yonaimineakio/speakcoach/internal/logger"
)

// handleHealth is a liveness probe. It returns 200 while the process runs.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleReady reports readiness. It checks database connectivity and returns
// 503 until the check passes.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if err := s.DB.PingContext(ctx); err != nil {
		log.Warn("readiness check failed: %v", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

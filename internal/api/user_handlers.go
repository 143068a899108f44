package api

import (
	"net/http"

	"github.com/yonaimineakio/speakcoach/internal/logger"
)

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	log.Debug("fetching user stats")
	stats, err := s.UserService.Stats(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

package api

import (
	"net/http"

	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	var req models.StartSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithFields(map[string]any{
		"round_target": req.RoundTarget,
		"difficulty":   req.Difficulty,
		"mode":         req.Mode,
	})
	log.Debug("starting session")

	result, err := s.SessionService.Start(r.Context(), user.ID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("session started: session_id=%d", result.SessionID)
	respondJSON(w, http.StatusCreated, result)
}

type turnRequest struct {
	UserInput string `json:"user_input"`
}

func (s *Server) handleSessionTurn(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	id, err := urlParamInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req turnRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithField("session_id", id)
	log.Debug("processing turn")

	result, err := s.SessionService.ProcessTurn(r.Context(), user.ID, id, req.UserInput)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("turn processed: round_index=%d provider=%s", result.RoundIndex, result.Provider)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleExtendSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	id, err := urlParamInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithField("session_id", id)
	log.Debug("extending session")

	status, err := s.SessionService.Extend(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("session extended: round_target=%d extension_count=%d", status.RoundTarget, status.ExtensionCount)
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	id, err := urlParamInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithField("session_id", id)
	log.Debug("ending session")

	summary, err := s.SessionService.End(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("session ended: completed_rounds=%d bonus_points=%d", summary.CompletedRounds, summary.BonusPoints)
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	id, err := urlParamInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	status, err := s.SessionService.Status(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

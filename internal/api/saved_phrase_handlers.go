package api

import (
	"net/http"

	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

func (s *Server) handleSavePhrase(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	var req models.SavePhraseRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("saving phrase")
	phrase, err := s.SavedPhraseService.Save(r.Context(), user.ID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, phrase)
}

func (s *Server) handleListSavedPhrases(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	phrases, total, err := s.SavedPhraseService.List(r.Context(), user.ID, limit, offset)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if phrases == nil {
		phrases = []models.SavedPhrase{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items": phrases,
		"total": total,
	})
}

func (s *Server) handleDeleteSavedPhrase(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	id, err := urlParamInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithField("phrase_id", id)
	log.Debug("deleting saved phrase")

	if err := s.SavedPhraseService.Delete(r.Context(), user.ID, id); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleConvertSavedPhrase(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	id, err := urlParamInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithField("phrase_id", id)
	log.Debug("converting saved phrase to review item")

	item, err := s.SavedPhraseService.Convert(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("saved phrase converted: review_item_id=%d", item.ID)
	respondJSON(w, http.StatusCreated, item)
}

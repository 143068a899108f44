package api

import (
	"net/http"

	"github.com/yonaimineakio/speakcoach/internal/errors"
	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/services"
)

func (s *Server) handleNextReviews(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	limit := queryInt(r, "limit", 0)
	log.Debug("fetching due review items: limit=%d", limit)

	items, err := s.ReviewService.GetDueItems(r.Context(), user.ID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	total, err := s.ReviewService.CountDue(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if items == nil {
		items = []models.ReviewItem{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items":     items,
		"total_due": total,
	})
}

func (s *Server) handleReviewHistory(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	limit := queryInt(r, "limit", 0)
	items, err := s.ReviewService.History(r.Context(), user.ID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if items == nil {
		items = []models.ReviewItem{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

type questionRequest struct {
	QuestionType string `json:"question_type"`
}

func (s *Server) handleReviewQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	id, err := urlParamInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req questionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithFields(map[string]any{
		"item_id":       id,
		"question_type": req.QuestionType,
	})
	log.Debug("generating review question")

	question, err := s.ReviewService.GenerateQuestion(r.Context(), user.ID, id, req.QuestionType)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, question)
}

type evaluateReviewRequest struct {
	QuestionType  string   `json:"question_type"`
	Transcript    string   `json:"transcript"`
	SelectedWords []string `json:"selected_words"`
	SpeakingScore *int     `json:"speaking_score"`
}

func (s *Server) handleEvaluateReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	id, err := urlParamInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req evaluateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithFields(map[string]any{
		"item_id":       id,
		"question_type": req.QuestionType,
	})
	log.Debug("evaluating review answer")

	var result *services.ReviewEvaluationResult
	switch req.QuestionType {
	case models.QuestionTypeSpeaking:
		result, err = s.ReviewService.EvaluateSpeaking(r.Context(), user.ID, id, req.Transcript)
	case models.QuestionTypeListening:
		result, err = s.ReviewService.EvaluateListening(r.Context(), user.ID, id, req.SelectedWords, req.SpeakingScore)
	default:
		err = errors.NewValidationError("question_type", "must be speaking or listening")
	}
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("review evaluated: score=%d completed=%v", result.Score, result.IsCompleted)
	respondJSON(w, http.StatusOK, result)
}

type completeReviewRequest struct {
	Result string `json:"result"`
}

func (s *Server) handleCompleteReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	id, err := urlParamInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req completeReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithFields(map[string]any{
		"item_id": id,
		"result":  req.Result,
	})
	log.Debug("completing review item")

	item, err := s.ReviewService.CompleteReviewItem(r.Context(), user.ID, id, req.Result)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

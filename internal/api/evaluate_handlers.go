package api

import (
	"net/http"

	"github.com/yonaimineakio/speakcoach/internal/errors"
	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/match"
)

// Direct evaluation endpoints. These score caller-supplied texts without
// touching any review item, so clients can grade free practice the same way
// review answers are graded.

type evaluateSpeakingRequest struct {
	TargetSentence string `json:"target_sentence"`
	Transcript     string `json:"transcript"`
}

func (s *Server) handleEvaluateSpeaking(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req evaluateSpeakingRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.TargetSentence == "" {
		handleError(w, r, errors.NewValidationError("target_sentence", "must not be empty"))
		return
	}

	result := match.EvaluateSpeaking(req.TargetSentence, req.Transcript)
	log.Debug("speaking evaluated: score=%d matched=%d/%d", result.Score, result.MatchedCount, result.TotalCount)
	respondJSON(w, http.StatusOK, result)
}

type evaluateListeningRequest struct {
	CorrectWords   []string `json:"correct_words"`
	SubmittedWords []string `json:"submitted_words"`
}

func (s *Server) handleEvaluateListening(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req evaluateListeningRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if len(req.CorrectWords) == 0 {
		handleError(w, r, errors.NewValidationError("correct_words", "must not be empty"))
		return
	}

	result := match.EvaluateListening(req.CorrectWords, req.SubmittedWords)
	partial := match.EvaluateListeningPartial(req.CorrectWords, req.SubmittedWords)
	log.Debug("listening evaluated: correct=%v score=%d partial=%d", result.Correct, result.Score, partial.Score)
	respondJSON(w, http.StatusOK, map[string]any{
		"correct":       result.Correct,
		"score":         result.Score,
		"partial_score": partial.Score,
	})
}

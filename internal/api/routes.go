package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.userMiddleware)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/start", s.handleStartSession)
			r.Post("/{id}/turn", s.handleSessionTurn)
			r.Post("/{id}/extend", s.handleExtendSession)
			r.Post("/{id}/end", s.handleEndSession)
			r.Get("/{id}/status", s.handleSessionStatus)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", s.handleListScenarios)
			r.Get("/{id}", s.handleGetScenario)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/next", s.handleNextReviews)
			r.Get("/history", s.handleReviewHistory)
			r.Post("/{id}/question", s.handleReviewQuestion)
			r.Post("/{id}/evaluate", s.handleEvaluateReview)
			r.Post("/{id}/complete", s.handleCompleteReview)
		})

		r.Route("/evaluate", func(r chi.Router) {
			r.Post("/speaking", s.handleEvaluateSpeaking)
			r.Post("/listening", s.handleEvaluateListening)
		})

		r.Route("/saved-phrases", func(r chi.Router) {
			r.Post("/", s.handleSavePhrase)
			r.Get("/", s.handleListSavedPhrases)
			r.Delete("/{id}", s.handleDeleteSavedPhrase)
			r.Post("/{id}/convert-to-review", s.handleConvertSavedPhrase)
		})

		r.Get("/users/me/stats", s.handleUserStats)
	})

	return r
}

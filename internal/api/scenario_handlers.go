package api

import (
	"net/http"

	"github.com/yonaimineakio/speakcoach/internal/models"
)

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.ScenarioService.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	if scenarios == nil {
		scenarios = []models.Scenario{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": scenarios})
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	scenario, err := s.ScenarioService.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, scenario)
}

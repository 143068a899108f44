package services

import (
	"context"

	"github.com/yonaimineakio/speakcoach/internal/errors"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
)

// ScenarioService exposes the scenario catalog
type ScenarioService interface {
	List(ctx context.Context) ([]models.Scenario, error)
	Get(ctx context.Context, id int64) (*models.Scenario, error)
}

type scenarioService struct {
	scenarios repository.ScenarioRepository
}

// NewScenarioService creates a new ScenarioService
func NewScenarioService(scenarios repository.ScenarioRepository) ScenarioService {
	return &scenarioService{scenarios: scenarios}
}

func (s *scenarioService) List(ctx context.Context) ([]models.Scenario, error) {
	scenarios, err := s.scenarios.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return scenarios, nil
}

func (s *scenarioService) Get(ctx context.Context, id int64) (*models.Scenario, error) {
	scenario, err := s.scenarios.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if scenario == nil || !scenario.IsActive {
		return nil, errors.NewNotFoundError("scenario", id)
	}
	return scenario, nil
}

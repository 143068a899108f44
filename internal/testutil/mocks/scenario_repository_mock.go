package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

// MockScenarioRepository is a mock implementation of repository.ScenarioRepository
type MockScenarioRepository struct {
	mock.Mock
}

func (m *MockScenarioRepository) Get(ctx context.Context, id int64) (*models.Scenario, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Scenario), args.Error(1)
}

func (m *MockScenarioRepository) List(ctx context.Context) ([]models.Scenario, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Scenario), args.Error(1)
}

func (m *MockScenarioRepository) GetCustom(ctx context.Context, id int64) (*models.CustomScenario, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomScenario), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
)

// MockSessionRepository is a mock implementation of repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session models.Session) (int64, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) Get(ctx context.Context, id int64) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) Rounds(ctx context.Context, sessionID int64) ([]models.SessionRound, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionRound), args.Error(1)
}

func (m *MockSessionRepository) RecentRounds(ctx context.Context, sessionID int64, limit int) ([]models.SessionRound, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionRound), args.Error(1)
}

func (m *MockSessionRepository) UpdateExtension(ctx context.Context, id int64, roundTarget, extensionCount int) error {
	args := m.Called(ctx, id, roundTarget, extensionCount)
	return args.Error(0)
}

func (m *MockSessionRepository) UpdateGoalProgress(ctx context.Context, id int64, progress []int) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

func (m *MockSessionRepository) RecordTurn(ctx context.Context, round models.SessionRound, userID string, points int) error {
	args := m.Called(ctx, round, userID, points)
	return args.Error(0)
}

func (m *MockSessionRepository) Finish(ctx context.Context, fin repository.SessionFinish) error {
	args := m.Called(ctx, fin)
	return args.Error(0)
}

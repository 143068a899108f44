package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

// MockSavedPhraseRepository is a mock implementation of repository.SavedPhraseRepository
type MockSavedPhraseRepository struct {
	mock.Mock
}

func (m *MockSavedPhraseRepository) Insert(ctx context.Context, phrase models.SavedPhrase) (int64, error) {
	args := m.Called(ctx, phrase)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSavedPhraseRepository) Get(ctx context.Context, id int64, userID string) (*models.SavedPhrase, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedPhrase), args.Error(1)
}

func (m *MockSavedPhraseRepository) List(ctx context.Context, userID string, limit, offset int) ([]models.SavedPhrase, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.SavedPhrase), args.Int(1), args.Error(2)
}

func (m *MockSavedPhraseRepository) Delete(ctx context.Context, id int64, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockSavedPhraseRepository) FindByRound(ctx context.Context, userID string, sessionID int64, roundIndex int) (*models.SavedPhrase, error) {
	args := m.Called(ctx, userID, sessionID, roundIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedPhrase), args.Error(1)
}

func (m *MockSavedPhraseRepository) Convert(ctx context.Context, phraseID int64, item models.ReviewItem) (*models.ReviewItem, error) {
	args := m.Called(ctx, phraseID, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewItem), args.Error(1)
}

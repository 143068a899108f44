package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

// MockReviewItemRepository is a mock implementation of repository.ReviewItemRepository
type MockReviewItemRepository struct {
	mock.Mock
}

func (m *MockReviewItemRepository) Insert(ctx context.Context, item models.ReviewItem) (int64, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewItemRepository) Get(ctx context.Context, id int64, userID string) (*models.ReviewItem, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewItem), args.Error(1)
}

func (m *MockReviewItemRepository) DueItems(ctx context.Context, userID string, now time.Time, limit int) ([]models.ReviewItem, error) {
	args := m.Called(ctx, userID, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewItem), args.Error(1)
}

func (m *MockReviewItemRepository) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	args := m.Called(ctx, userID, now)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewItemRepository) History(ctx context.Context, userID string, limit int) ([]models.ReviewItem, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewItem), args.Error(1)
}

func (m *MockReviewItemRepository) BySourceSession(ctx context.Context, sessionID int64) ([]models.ReviewItem, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewItem), args.Error(1)
}

func (m *MockReviewItemRepository) Update(ctx context.Context, item models.ReviewItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockReviewItemRepository) LatestDueAt(ctx context.Context, userID string) (*time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

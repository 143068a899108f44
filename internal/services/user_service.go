package services

import (
	"context"
	"time"

	"github.com/yonaimineakio/speakcoach/internal/errors"
	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
	"github.com/yonaimineakio/speakcoach/internal/scoring"
)

// UserService handles user account and stats business logic
type UserService interface {
	EnsureUser(ctx context.Context, id string) (*models.User, error)
	Stats(ctx context.Context, userID string) (*models.UserStats, error)
}

type userService struct {
	users   repository.UserRepository
	reviews repository.ReviewItemRepository
	streaks *scoring.StreakTracker
	now     func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepository, reviews repository.ReviewItemRepository, streaks *scoring.StreakTracker) UserService {
	return &userService{users: users, reviews: reviews, streaks: streaks, now: time.Now}
}

// EnsureUser returns the user, creating the record on first sight.
func (s *userService) EnsureUser(ctx context.Context, id string) (*models.User, error) {
	log := logger.FromContext(ctx)

	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if user != nil {
		return user, nil
	}

	// The upstream subject is the only identity we see; profile fields fill
	// in when an account system lands.
	user = &models.User{ID: id, Sub: id, Name: id, Email: id, CreatedAt: s.now()}
	if err := s.users.Create(ctx, *user); err != nil {
		log.Error("failed to create user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("user created: id=%s", id)
	return user, nil
}

func (s *userService) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting user stats: user_id=%s", userID)

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", userID)
	}

	dueCount, err := s.reviews.CountDue(ctx, userID, s.now())
	if err != nil {
		log.Error("failed to count due items: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.UserStats{
		TotalPoints:      user.TotalPoints,
		CurrentStreak:    user.CurrentStreak,
		LongestStreak:    user.LongestStreak,
		LastActivityDate: user.LastActivityDate,
		IsActiveToday:    s.streaks.IsActiveToday(user.LastActivityDate, s.now()),
		DueReviewCount:   dueCount,
	}, nil
}

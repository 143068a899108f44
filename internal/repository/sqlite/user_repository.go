package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, id string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user: id=%s", id)

	var u models.User
	err := r.db.QueryRowContext(ctx, `
SELECT id, sub, name, email, total_points, current_streak, longest_streak, last_activity_date, created_at
FROM users
WHERE id = ?
`, id).Scan(&u.ID, &u.Sub, &u.Name, &u.Email, &u.TotalPoints, &u.CurrentStreak, &u.LongestStreak, &u.LastActivityDate, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("user not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, u models.User) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("creating user: id=%s", u.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, sub, name, email, total_points, current_streak, longest_streak, last_activity_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, u.ID, u.Sub, u.Name, u.Email, u.TotalPoints, u.CurrentStreak, u.LongestStreak, u.LastActivityDate)
	if err != nil {
		log.Error("failed to create user: %v", err)
	}
	return err
}


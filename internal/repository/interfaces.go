package repository

import (
	"context"
	"time"

	"github.com/yonaimineakio/speakcoach/internal/models"
)

// UserRepository handles user data access. Point and streak writes go
// through SessionRepository transactions so they commit with the turn or
// finish that caused them.
type UserRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user models.User) error
}

// ScenarioRepository resolves built-in and user-created scenarios
type ScenarioRepository interface {
	Get(ctx context.Context, id int64) (*models.Scenario, error)
	List(ctx context.Context) ([]models.Scenario, error)
	GetCustom(ctx context.Context, id int64) (*models.CustomScenario, error)
}

// StreakUpdate carries the streak fields written when a session ends.
type StreakUpdate struct {
	Current      int
	Longest      int
	LastActivity time.Time
}

// SessionFinish bundles every write of a first-time session end so the
// repository can commit them as one transaction.
type SessionFinish struct {
	SessionID   int64
	UserID      string
	EndedAt     time.Time
	ReviewItems []models.ReviewItem
	BonusPoints int
	Streak      StreakUpdate
}

// SessionRepository handles session and round data access
type SessionRepository interface {
	Create(ctx context.Context, session models.Session) (int64, error)
	Get(ctx context.Context, id int64) (*models.Session, error)
	Rounds(ctx context.Context, sessionID int64) ([]models.SessionRound, error)
	RecentRounds(ctx context.Context, sessionID int64, limit int) ([]models.SessionRound, error)
	UpdateExtension(ctx context.Context, id int64, roundTarget, extensionCount int) error
	UpdateGoalProgress(ctx context.Context, id int64, progress []int) error
	// RecordTurn commits the round insert, the completed_rounds increment, and
	// the round point award as one transaction.
	RecordTurn(ctx context.Context, round models.SessionRound, userID string, points int) error
	// Finish commits ended_at, the review item batch, the completion bonus, and
	// the streak update as one transaction. It is an error to call it on a
	// session that already ended.
	Finish(ctx context.Context, fin SessionFinish) error
}

// ReviewItemRepository handles review item data access
type ReviewItemRepository interface {
	Insert(ctx context.Context, item models.ReviewItem) (int64, error)
	Get(ctx context.Context, id int64, userID string) (*models.ReviewItem, error)
	DueItems(ctx context.Context, userID string, now time.Time, limit int) ([]models.ReviewItem, error)
	CountDue(ctx context.Context, userID string, now time.Time) (int, error)
	History(ctx context.Context, userID string, limit int) ([]models.ReviewItem, error)
	BySourceSession(ctx context.Context, sessionID int64) ([]models.ReviewItem, error)
	Update(ctx context.Context, item models.ReviewItem) error
	LatestDueAt(ctx context.Context, userID string) (*time.Time, error)
}

// SavedPhraseRepository handles user-saved phrase data access
type SavedPhraseRepository interface {
	Insert(ctx context.Context, phrase models.SavedPhrase) (int64, error)
	Get(ctx context.Context, id int64, userID string) (*models.SavedPhrase, error)
	List(ctx context.Context, userID string, limit, offset int) ([]models.SavedPhrase, int, error)
	Delete(ctx context.Context, id int64, userID string) error
	FindByRound(ctx context.Context, userID string, sessionID int64, roundIndex int) (*models.SavedPhrase, error)
	// Convert inserts the review item and records it on the saved phrase in one
	// transaction, returning the created item.
	Convert(ctx context.Context, phraseID int64, item models.ReviewItem) (*models.ReviewItem, error)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
)

type reviewItemRepository struct {
	db *sql.DB
}

// NewReviewItemRepository creates a new ReviewItemRepository implementation
func NewReviewItemRepository(db *sql.DB) repository.ReviewItemRepository {
	return &reviewItemRepository{db: db}
}

const reviewItemColumns = "id, user_id, phrase, explanation, due_at, is_completed, created_at, completed_at, source_session_id, source_round_index, selection_reason, selection_score"

func scanReviewItem(scanner interface{ Scan(...any) error }) (*models.ReviewItem, error) {
	var item models.ReviewItem
	var reason sql.NullString
	err := scanner.Scan(&item.ID, &item.UserID, &item.Phrase, &item.Explanation, &item.DueAt, &item.IsCompleted, &item.CreatedAt, &item.CompletedAt, &item.SourceSessionID, &item.SourceRoundIdx, &reason, &item.SelectionScore)
	if err != nil {
		return nil, err
	}
	if reason.Valid {
		item.SelectionReason = reason.String
	}
	return &item, nil
}

func (r *reviewItemRepository) Insert(ctx context.Context, item models.ReviewItem) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("inserting review item: user_id=%s", item.UserID)

	var reason any
	if item.SelectionReason != "" {
		reason = item.SelectionReason
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO review_items (user_id, phrase, explanation, due_at, is_completed, source_session_id, source_round_index, selection_reason, selection_score)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, item.UserID, item.Phrase, item.Explanation, item.DueAt, item.IsCompleted, item.SourceSessionID, item.SourceRoundIdx, reason, item.SelectionScore)
	if err != nil {
		log.Error("failed to insert review item: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get review item id: %v", err)
		return 0, err
	}
	log.Debug("review item inserted: id=%d", id)
	return id, nil
}

func (r *reviewItemRepository) Get(ctx context.Context, id int64, userID string) (*models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("getting review item: id=%d, user_id=%s", id, userID)

	row := r.db.QueryRowContext(ctx, `
SELECT `+reviewItemColumns+`
FROM review_items
WHERE id = ? AND user_id = ?
`, id, userID)
	item, err := scanReviewItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("review item not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get review item: %v", err)
		return nil, err
	}
	return item, nil
}

// DueItems returns incomplete items whose due time has passed. The ordering is
// part of the scheduling contract: never-yet-completed first, then oldest due,
// then oldest created.
func (r *reviewItemRepository) DueItems(ctx context.Context, userID string, now time.Time, limit int) ([]models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching due items: user_id=%s, limit=%d", userID, limit)

	query := sqlBuilder.
		Select(reviewItemColumns).
		From("review_items").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"is_completed": false}).
		Where(squirrel.LtOrEq{"due_at": now}).
		OrderBy("is_completed ASC", "due_at ASC", "created_at ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query due items: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.ReviewItem
	for rows.Next() {
		item, err := scanReviewItem(rows)
		if err != nil {
			log.Error("failed to scan review item row: %v", err)
			return nil, err
		}
		items = append(items, *item)
	}
	log.Debug("found %d due items", len(items))
	return items, rows.Err()
}

func (r *reviewItemRepository) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	sqlStr, args, err := sqlBuilder.
		Select("COUNT(*)").
		From("review_items").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"is_completed": false}).
		Where(squirrel.LtOrEq{"due_at": now}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count due items: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *reviewItemRepository) History(ctx context.Context, userID string, limit int) ([]models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching review history: user_id=%s, limit=%d", userID, limit)

	query := sqlBuilder.
		Select(reviewItemColumns).
		From("review_items").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"is_completed": true}).
		Where("completed_at IS NOT NULL").
		OrderBy("completed_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query review history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.ReviewItem
	for rows.Next() {
		item, err := scanReviewItem(rows)
		if err != nil {
			log.Error("failed to scan review item row: %v", err)
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *reviewItemRepository) BySourceSession(ctx context.Context, sessionID int64) ([]models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching review items by source session: session_id=%d", sessionID)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+reviewItemColumns+`
FROM review_items
WHERE source_session_id = ?
ORDER BY selection_score DESC, id ASC
`, sessionID)
	if err != nil {
		log.Error("failed to query review items by session: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.ReviewItem
	for rows.Next() {
		item, err := scanReviewItem(rows)
		if err != nil {
			log.Error("failed to scan review item row: %v", err)
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *reviewItemRepository) Update(ctx context.Context, item models.ReviewItem) error {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("updating review item: id=%d, is_completed=%v", item.ID, item.IsCompleted)

	_, err := r.db.ExecContext(ctx, `
UPDATE review_items
SET due_at = ?, is_completed = ?, completed_at = ?
WHERE id = ? AND user_id = ?
`, item.DueAt, item.IsCompleted, item.CompletedAt, item.ID, item.UserID)
	if err != nil {
		log.Error("failed to update review item: %v", err)
	}
	return err
}

func (r *reviewItemRepository) LatestDueAt(ctx context.Context, userID string) (*time.Time, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	var due time.Time
	err := r.db.QueryRowContext(ctx, `
SELECT due_at FROM review_items
WHERE user_id = ?
ORDER BY due_at DESC
LIMIT 1
`, userID).Scan(&due)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get latest due time: %v", err)
		return nil, err
	}
	return &due, nil
}

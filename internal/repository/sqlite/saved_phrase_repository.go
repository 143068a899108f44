package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
)

type savedPhraseRepository struct {
	db *sql.DB
}

// NewSavedPhraseRepository creates a new SavedPhraseRepository implementation
func NewSavedPhraseRepository(db *sql.DB) repository.SavedPhraseRepository {
	return &savedPhraseRepository{db: db}
}

const savedPhraseColumns = "id, user_id, phrase, explanation, original_input, session_id, round_index, converted_to_review_id, created_at"

func scanSavedPhrase(scanner interface{ Scan(...any) error }) (*models.SavedPhrase, error) {
	var p models.SavedPhrase
	var original sql.NullString
	err := scanner.Scan(&p.ID, &p.UserID, &p.Phrase, &p.Explanation, &original, &p.SessionID, &p.RoundIndex, &p.ConvertedToReviewID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if original.Valid {
		p.OriginalInput = original.String
	}
	return &p, nil
}

func (r *savedPhraseRepository) Insert(ctx context.Context, phrase models.SavedPhrase) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")
	log.Debug("inserting saved phrase: user_id=%s", phrase.UserID)

	var original any
	if phrase.OriginalInput != "" {
		original = phrase.OriginalInput
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO saved_phrases (user_id, phrase, explanation, original_input, session_id, round_index)
VALUES (?, ?, ?, ?, ?, ?)
`, phrase.UserID, phrase.Phrase, phrase.Explanation, original, phrase.SessionID, phrase.RoundIndex)
	if err != nil {
		log.Error("failed to insert saved phrase: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get saved phrase id: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *savedPhraseRepository) Get(ctx context.Context, id int64, userID string) (*models.SavedPhrase, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")
	log.Debug("getting saved phrase: id=%d, user_id=%s", id, userID)

	row := r.db.QueryRowContext(ctx, `
SELECT `+savedPhraseColumns+`
FROM saved_phrases
WHERE id = ? AND user_id = ?
`, id, userID)
	p, err := scanSavedPhrase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get saved phrase: %v", err)
		return nil, err
	}
	return p, nil
}

func (r *savedPhraseRepository) List(ctx context.Context, userID string, limit, offset int) ([]models.SavedPhrase, int, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")
	log.Debug("listing saved phrases: user_id=%s, limit=%d, offset=%d", userID, limit, offset)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM saved_phrases WHERE user_id = ?", userID).Scan(&total); err != nil {
		log.Error("failed to count saved phrases: %v", err)
		return nil, 0, err
	}

	query := sqlBuilder.
		Select(savedPhraseColumns).
		From("saved_phrases").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query saved phrases: %v", err)
		return nil, 0, err
	}
	defer rows.Close()

	var phrases []models.SavedPhrase
	for rows.Next() {
		p, err := scanSavedPhrase(rows)
		if err != nil {
			log.Error("failed to scan saved phrase row: %v", err)
			return nil, 0, err
		}
		phrases = append(phrases, *p)
	}
	return phrases, total, rows.Err()
}

func (r *savedPhraseRepository) Delete(ctx context.Context, id int64, userID string) error {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")
	log.Debug("deleting saved phrase: id=%d, user_id=%s", id, userID)

	res, err := r.db.ExecContext(ctx, "DELETE FROM saved_phrases WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		log.Error("failed to delete saved phrase: %v", err)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *savedPhraseRepository) FindByRound(ctx context.Context, userID string, sessionID int64, roundIndex int) (*models.SavedPhrase, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")

	row := r.db.QueryRowContext(ctx, `
SELECT `+savedPhraseColumns+`
FROM saved_phrases
WHERE user_id = ? AND session_id = ? AND round_index = ?
`, userID, sessionID, roundIndex)
	p, err := scanSavedPhrase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to find saved phrase by round: %v", err)
		return nil, err
	}
	return p, nil
}

// Convert inserts the review item and links it back to the phrase so the same
// phrase cannot be converted twice.
func (r *savedPhraseRepository) Convert(ctx context.Context, phraseID int64, item models.ReviewItem) (*models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")
	log.Debug("converting saved phrase to review item: phrase_id=%d", phraseID)

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		var reason any
		if item.SelectionReason != "" {
			reason = item.SelectionReason
		}
		res, err := tx.ExecContext(ctx, `
INSERT INTO review_items (user_id, phrase, explanation, due_at, is_completed, source_session_id, source_round_index, selection_reason, selection_score)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, item.UserID, item.Phrase, item.Explanation, item.DueAt, item.IsCompleted, item.SourceSessionID, item.SourceRoundIdx, reason, item.SelectionScore)
		if err != nil {
			return err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		item.ID = itemID

		upd, err := tx.ExecContext(ctx, `
UPDATE saved_phrases
SET converted_to_review_id = ?
WHERE id = ? AND user_id = ? AND converted_to_review_id IS NULL
`, itemID, phraseID, item.UserID)
		if err != nil {
			return err
		}
		affected, err := upd.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to convert saved phrase: %v", err)
		}
		return nil, err
	}
	return &item, nil
}

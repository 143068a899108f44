package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s models.Session) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("creating session: user_id=%s", s.UserID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (user_id, scenario_id, custom_scenario_id, round_target, completed_rounds, difficulty, mode, extension_count, goal_progress, started_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.UserID, s.ScenarioID, s.CustomScenarioID, s.RoundTarget, s.CompletedRounds, s.Difficulty, s.Mode, s.ExtensionCount, marshalInts(s.GoalProgress), s.StartedAt)
	if err != nil {
		log.Error("failed to create session: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get session id: %v", err)
		return 0, err
	}
	log.Debug("session created: id=%d", id)
	return id, nil
}

func (r *sessionRepository) Get(ctx context.Context, id int64) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%d", id)

	var s models.Session
	var goalProgress string
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, scenario_id, custom_scenario_id, round_target, completed_rounds, difficulty, mode, extension_count, goal_progress, started_at, ended_at
FROM sessions
WHERE id = ?
`, id).Scan(&s.ID, &s.UserID, &s.ScenarioID, &s.CustomScenarioID, &s.RoundTarget, &s.CompletedRounds, &s.Difficulty, &s.Mode, &s.ExtensionCount, &goalProgress, &s.StartedAt, &s.EndedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	s.GoalProgress = unmarshalInts(goalProgress)
	return &s, nil
}

func (r *sessionRepository) Rounds(ctx context.Context, sessionID int64) ([]models.SessionRound, error) {
	return r.rounds(ctx, sessionID, 0)
}

func (r *sessionRepository) RecentRounds(ctx context.Context, sessionID int64, limit int) ([]models.SessionRound, error) {
	return r.rounds(ctx, sessionID, limit)
}

// rounds returns rounds in ascending round order. When limit > 0 only the most
// recent rounds are returned, still oldest first.
func (r *sessionRepository) rounds(ctx context.Context, sessionID int64, limit int) ([]models.SessionRound, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("fetching rounds: session_id=%d, limit=%d", sessionID, limit)

	query := `
SELECT id, session_id, round_index, user_input, ai_reply, feedback, improved_sentence, tags, score_pronunciation, score_grammar, created_at
FROM session_rounds
WHERE session_id = ?
ORDER BY round_index ASC
`
	args := []any{sessionID}
	if limit > 0 {
		query = `
SELECT id, session_id, round_index, user_input, ai_reply, feedback, improved_sentence, tags, score_pronunciation, score_grammar, created_at
FROM (
    SELECT id, session_id, round_index, user_input, ai_reply, feedback, improved_sentence, tags, score_pronunciation, score_grammar, created_at
    FROM session_rounds
    WHERE session_id = ?
    ORDER BY round_index DESC
    LIMIT ?
)
ORDER BY round_index ASC
`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query rounds: %v", err)
		return nil, err
	}
	defer rows.Close()

	var rounds []models.SessionRound
	for rows.Next() {
		var rd models.SessionRound
		var tags string
		if err := rows.Scan(&rd.ID, &rd.SessionID, &rd.RoundIndex, &rd.UserInput, &rd.AIReply, &rd.Feedback, &rd.ImprovedSentence, &tags, &rd.ScorePronunciation, &rd.ScoreGrammar, &rd.CreatedAt); err != nil {
			log.Error("failed to scan round row: %v", err)
			return nil, err
		}
		rd.Tags = unmarshalStrings(tags)
		rounds = append(rounds, rd)
	}
	log.Debug("found %d rounds", len(rounds))
	return rounds, rows.Err()
}

func (r *sessionRepository) UpdateExtension(ctx context.Context, id int64, roundTarget, extensionCount int) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("extending session: id=%d, round_target=%d, extension_count=%d", id, roundTarget, extensionCount)

	_, err := r.db.ExecContext(ctx, `
UPDATE sessions SET round_target = ?, extension_count = ? WHERE id = ? AND ended_at IS NULL
`, roundTarget, extensionCount, id)
	if err != nil {
		log.Error("failed to extend session: %v", err)
	}
	return err
}

func (r *sessionRepository) UpdateGoalProgress(ctx context.Context, id int64, progress []int) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating goal progress: session_id=%d", id)

	_, err := r.db.ExecContext(ctx, `
UPDATE sessions SET goal_progress = ? WHERE id = ?
`, marshalInts(progress), id)
	if err != nil {
		log.Error("failed to update goal progress: %v", err)
	}
	return err
}

func (r *sessionRepository) RecordTurn(ctx context.Context, round models.SessionRound, userID string, points int) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("recording turn: session_id=%d, round_index=%d, points=%d", round.SessionID, round.RoundIndex, points)

	return tx(ctx, r.db, func(t *sql.Tx) error {
		if _, err := t.ExecContext(ctx, `
INSERT INTO session_rounds (session_id, round_index, user_input, ai_reply, feedback, improved_sentence, tags, score_pronunciation, score_grammar)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, round.SessionID, round.RoundIndex, round.UserInput, round.AIReply, round.Feedback, round.ImprovedSentence, marshalStrings(round.Tags), round.ScorePronunciation, round.ScoreGrammar); err != nil {
			return fmt.Errorf("insert round: %w", err)
		}

		res, err := t.ExecContext(ctx, `
UPDATE sessions SET completed_rounds = ? WHERE id = ? AND completed_rounds = ? AND ended_at IS NULL
`, round.RoundIndex, round.SessionID, round.RoundIndex-1)
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		// Optimistic check: a concurrent turn already advanced the session.
		if affected == 0 {
			return fmt.Errorf("session %d advanced concurrently", round.SessionID)
		}

		if points > 0 {
			if _, err := t.ExecContext(ctx, `
UPDATE users SET total_points = total_points + ? WHERE id = ?
`, points, userID); err != nil {
				return fmt.Errorf("award points: %w", err)
			}
		}
		return nil
	})
}

func (r *sessionRepository) Finish(ctx context.Context, fin repository.SessionFinish) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("finishing session: id=%d, review_items=%d, bonus=%d", fin.SessionID, len(fin.ReviewItems), fin.BonusPoints)

	return tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `
UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL
`, fin.EndedAt, fin.SessionID)
		if err != nil {
			return fmt.Errorf("set ended_at: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("session %d already ended", fin.SessionID)
		}

		for _, item := range fin.ReviewItems {
			if _, err := t.ExecContext(ctx, `
INSERT INTO review_items (user_id, phrase, explanation, due_at, is_completed, source_session_id, source_round_index, selection_reason, selection_score)
VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?)
`, item.UserID, item.Phrase, item.Explanation, item.DueAt, item.SourceSessionID, item.SourceRoundIdx, item.SelectionReason, item.SelectionScore); err != nil {
				return fmt.Errorf("insert review item: %w", err)
			}
		}

		if fin.BonusPoints > 0 {
			if _, err := t.ExecContext(ctx, `
UPDATE users SET total_points = total_points + ? WHERE id = ?
`, fin.BonusPoints, fin.UserID); err != nil {
				return fmt.Errorf("award bonus: %w", err)
			}
		}

		if _, err := t.ExecContext(ctx, `
UPDATE users SET current_streak = ?, longest_streak = ?, last_activity_date = ? WHERE id = ?
`, fin.Streak.Current, fin.Streak.Longest, fin.Streak.LastActivity, fin.UserID); err != nil {
			return fmt.Errorf("update streak: %w", err)
		}
		return nil
	})
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
)

type scenarioRepository struct {
	db *sql.DB
}

// NewScenarioRepository creates a new ScenarioRepository implementation
func NewScenarioRepository(db *sql.DB) repository.ScenarioRepository {
	return &scenarioRepository{db: db}
}

func (r *scenarioRepository) Get(ctx context.Context, id int64) (*models.Scenario, error) {
	log := logger.FromContext(ctx).WithPrefix("scenario_repo")
	log.Debug("getting scenario: id=%d", id)

	var s models.Scenario
	var goals string
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, description, category, difficulty, goals, opening_line, is_active, created_at
FROM scenarios
WHERE id = ?
`, id).Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.Difficulty, &goals, &s.OpeningLine, &s.IsActive, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("scenario not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get scenario: %v", err)
		return nil, err
	}
	s.Goals = unmarshalStrings(goals)
	return &s, nil
}

func (r *scenarioRepository) List(ctx context.Context) ([]models.Scenario, error) {
	log := logger.FromContext(ctx).WithPrefix("scenario_repo")
	log.Debug("listing scenarios")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, description, category, difficulty, goals, opening_line, is_active, created_at
FROM scenarios
WHERE is_active = 1
ORDER BY id ASC
`)
	if err != nil {
		log.Error("failed to list scenarios: %v", err)
		return nil, err
	}
	defer rows.Close()

	var scenarios []models.Scenario
	for rows.Next() {
		var s models.Scenario
		var goals string
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.Difficulty, &goals, &s.OpeningLine, &s.IsActive, &s.CreatedAt); err != nil {
			log.Error("failed to scan scenario row: %v", err)
			return nil, err
		}
		s.Goals = unmarshalStrings(goals)
		scenarios = append(scenarios, s)
	}
	return scenarios, rows.Err()
}

func (r *scenarioRepository) GetCustom(ctx context.Context, id int64) (*models.CustomScenario, error) {
	log := logger.FromContext(ctx).WithPrefix("scenario_repo")
	log.Debug("getting custom scenario: id=%d", id)

	var s models.CustomScenario
	var goals string
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, title, description, system_prompt, goals, opening_line, is_active, created_at
FROM custom_scenarios
WHERE id = ?
`, id).Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.SystemPrompt, &goals, &s.OpeningLine, &s.IsActive, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("custom scenario not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get custom scenario: %v", err)
		return nil, err
	}
	s.Goals = unmarshalStrings(goals)
	return &s, nil
}

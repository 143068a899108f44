package models

import "time"

// Difficulty levels supported by scenarios and sessions.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Session modes.
const (
	ModeText  = "text"
	ModeVoice = "voice"
)

// Scenario categories.
const (
	CategoryTravel     = "travel"
	CategoryBusiness   = "business"
	CategoryDaily      = "daily"
	CategoryRestaurant = "restaurant"
	CategoryCustom     = "custom"
)

type User struct {
	ID               string     `json:"id"`
	Sub              string     `json:"sub"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	TotalPoints      int        `json:"total_points"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Scenario struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	Goals       []string  `json:"goals"`
	OpeningLine string    `json:"opening_line"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type CustomScenario struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	SystemPrompt string    `json:"system_prompt"`
	Goals        []string  `json:"goals"`
	OpeningLine  string    `json:"opening_line"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

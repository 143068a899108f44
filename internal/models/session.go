package models

import "time"

// Round target bounds at session start. Extensions may push round_target
// past MaxRoundTarget by design.
const (
	MinRoundTarget   = 4
	MaxRoundTarget   = 12
	ExtensionRounds  = 3
	MaxExtensions    = 2
	ContextWindowLen = 2
)

type Session struct {
	ID               int64      `json:"id"`
	UserID           string     `json:"user_id"`
	ScenarioID       *int64     `json:"scenario_id"`
	CustomScenarioID *int64     `json:"custom_scenario_id"`
	RoundTarget      int        `json:"round_target"`
	CompletedRounds  int        `json:"completed_rounds"`
	Difficulty       string     `json:"difficulty"`
	Mode             string     `json:"mode"`
	ExtensionCount   int        `json:"extension_count"`
	GoalProgress     []int      `json:"goal_progress"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at"`
}

// IsActive reports whether the session can still accept turns.
func (s *Session) IsActive() bool {
	return s.EndedAt == nil
}

type SessionRound struct {
	ID                 int64     `json:"id"`
	SessionID          int64     `json:"session_id"`
	RoundIndex         int       `json:"round_index"`
	UserInput          string    `json:"user_input"`
	AIReply            string    `json:"ai_reply"`
	Feedback           string    `json:"feedback"`
	ImprovedSentence   string    `json:"improved_sentence"`
	Tags               []string  `json:"tags"`
	ScorePronunciation *int      `json:"score_pronunciation"`
	ScoreGrammar       *int      `json:"score_grammar"`
	CreatedAt          time.Time `json:"created_at"`
}

// EndReason explains why the orchestrator suggests ending a session.
// Precedence: user intent > goals completed > round limit.
type EndReason string

const (
	EndReasonNone           EndReason = ""
	EndReasonUserIntent     EndReason = "user_intent"
	EndReasonGoalsCompleted EndReason = "goals_completed"
	EndReasonRoundLimit     EndReason = "round_limit"
)

type GoalStatus struct {
	Goal     string `json:"goal"`
	Achieved bool   `json:"achieved"`
}

type StartSessionRequest struct {
	ScenarioID       *int64 `json:"scenario_id"`
	CustomScenarioID *int64 `json:"custom_scenario_id"`
	RoundTarget      int    `json:"round_target"`
	Difficulty       string `json:"difficulty"`
	Mode             string `json:"mode"`
}

type SessionStartResult struct {
	SessionID    int64    `json:"session_id"`
	ScenarioName string   `json:"scenario_name"`
	Category     string   `json:"category"`
	OpeningLine  string   `json:"opening_line"`
	Goals        []string `json:"goals"`
	RoundTarget  int      `json:"round_target"`
	Difficulty   string   `json:"difficulty"`
	Mode         string   `json:"mode"`
}

type SessionStatus struct {
	SessionID        int64  `json:"session_id"`
	ScenarioID       *int64 `json:"scenario_id"`
	CustomScenarioID *int64 `json:"custom_scenario_id"`
	RoundTarget      int    `json:"round_target"`
	CompletedRounds  int    `json:"completed_rounds"`
	Difficulty       string `json:"difficulty"`
	Mode             string `json:"mode"`
	ExtensionCount   int    `json:"extension_count"`
	IsActive         bool   `json:"is_active"`
	ExtensionOffered bool   `json:"extension_offered"`
	CanExtend        bool   `json:"can_extend"`
}

type TurnResult struct {
	RoundIndex       int           `json:"round_index"`
	AIReply          string        `json:"ai_reply"`
	Feedback         string        `json:"feedback"`
	ImprovedSentence string        `json:"improved_sentence"`
	Tags             []string      `json:"tags"`
	Provider         string        `json:"provider"`
	LatencyMS        int64         `json:"response_time_ms"`
	PointsAwarded    int           `json:"points_awarded"`
	GoalProgress     []GoalStatus  `json:"goal_progress"`
	SuggestEnd       bool          `json:"suggest_end"`
	EndReason        EndReason     `json:"end_reason,omitempty"`
	Status           SessionStatus `json:"session_status"`
}

type SessionEndSummary struct {
	SessionID       int64            `json:"session_id"`
	CompletedRounds int              `json:"completed_rounds"`
	TopPhrases      []SelectedPhrase `json:"top_phrases"`
	NextReviewAt    *time.Time       `json:"next_review_at"`
	GoalProgress    []GoalStatus     `json:"goal_progress"`
	BonusPoints     int              `json:"bonus_points"`
	ScenarioName    string           `json:"scenario_name"`
	Difficulty      string           `json:"difficulty"`
	Mode            string           `json:"mode"`
}

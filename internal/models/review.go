package models

import "time"

// Review question types. Both must score exactly 100 before an item completes.
const (
	QuestionTypeSpeaking  = "speaking"
	QuestionTypeListening = "listening"
)

// Legacy review results for the single-shot completion path.
const (
	ReviewResultCorrect   = "correct"
	ReviewResultIncorrect = "incorrect"
)

// ReviewRescheduleInterval is how far an unmastered item is pushed out.
const ReviewRescheduleInterval = 24 * time.Hour

type ReviewItem struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"user_id"`
	Phrase          string     `json:"phrase"`
	Explanation     string     `json:"explanation"`
	DueAt           time.Time  `json:"due_at"`
	IsCompleted     bool       `json:"is_completed"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	SourceSessionID *int64     `json:"source_session_id"`
	SourceRoundIdx  *int       `json:"source_round_index"`
	SelectionReason string     `json:"selection_reason,omitempty"`
	SelectionScore  *int       `json:"selection_score"`
}

// SelectedPhrase is one review-worthy phrase chosen from a finished session.
type SelectedPhrase struct {
	RoundIndex  int    `json:"round_index"`
	Phrase      string `json:"phrase"`
	Explanation string `json:"explanation"`
	Reason      string `json:"reason"`
	Score       int    `json:"score"`
}

// ReviewQuestion is a generated exercise for a review item. Speaking carries a
// target sentence; listening carries the audio text and its shuffled puzzle.
type ReviewQuestion struct {
	Type           string   `json:"question_type"`
	Prompt         string   `json:"prompt"`
	Hint           string   `json:"hint,omitempty"`
	TargetSentence string   `json:"target_sentence,omitempty"`
	AudioText      string   `json:"audio_text,omitempty"`
	PuzzleWords    []string `json:"puzzle_words,omitempty"`
}

type ReviewEvaluation struct {
	Item        ReviewItem `json:"item"`
	IsCompleted bool       `json:"is_completed"`
	NextDueAt   *time.Time `json:"next_due_at"`
}

type SavedPhrase struct {
	ID                  int64     `json:"id"`
	UserID              string    `json:"user_id"`
	Phrase              string    `json:"phrase"`
	Explanation         string    `json:"explanation"`
	OriginalInput       string    `json:"original_input,omitempty"`
	SessionID           *int64    `json:"session_id"`
	RoundIndex          *int      `json:"round_index"`
	ConvertedToReviewID *int64    `json:"converted_to_review_id"`
	CreatedAt           time.Time `json:"created_at"`
}

// SavePhraseRequest is the payload for saving a phrase for later review.
type SavePhraseRequest struct {
	Phrase        string `json:"phrase"`
	Explanation   string `json:"explanation"`
	OriginalInput string `json:"original_input,omitempty"`
	SessionID     *int64 `json:"session_id,omitempty"`
	RoundIndex    *int   `json:"round_index,omitempty"`
}

type UserStats struct {
	TotalPoints      int        `json:"total_points"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	IsActiveToday    bool       `json:"is_active_today"`
	DueReviewCount   int        `json:"due_review_count"`
}

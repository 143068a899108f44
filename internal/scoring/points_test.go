package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

func TestRoundPoints(t *testing.T) {
	tests := []struct {
		name       string
		difficulty string
		streak     int
		expected   int
	}{
		{"beginner no streak", models.DifficultyBeginner, 0, 10},
		{"beginner short streak below tier", models.DifficultyBeginner, 2, 10},
		{"beginner 3 day streak", models.DifficultyBeginner, 3, 11},
		{"intermediate no streak", models.DifficultyIntermediate, 0, 12},
		{"intermediate 7 day streak", models.DifficultyIntermediate, 7, 14},
		{"advanced 10 day streak", models.DifficultyAdvanced, 10, 18},
		{"advanced 14 day streak", models.DifficultyAdvanced, 14, 19},
		{"highest tier only, not stacked", models.DifficultyBeginner, 30, 13},
		{"unknown difficulty falls back to 1.0", "expert", 0, 10},
		{"case insensitive difficulty", "Advanced", 0, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RoundPoints(tt.difficulty, tt.streak))
		})
	}
}

func TestSessionCompletionPoints(t *testing.T) {
	assert.Equal(t, 50, SessionCompletionPoints(models.DifficultyBeginner, 0))
	assert.Equal(t, 60, SessionCompletionPoints(models.DifficultyIntermediate, 0))
	assert.Equal(t, 90, SessionCompletionPoints(models.DifficultyAdvanced, 7))
	assert.Equal(t, 97, SessionCompletionPoints(models.DifficultyAdvanced, 14))
}

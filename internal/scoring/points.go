// Package scoring computes point awards and daily-practice streaks.
package scoring

import (
	"math"
	"strings"

	"github.com/yonaimineakio/speakcoach/internal/models"
)

const (
	roundBasePoints             = 10
	sessionCompletionBasePoints = 50
)

var difficultyMultipliers = map[string]float64{
	models.DifficultyBeginner:     1.0,
	models.DifficultyIntermediate: 1.2,
	models.DifficultyAdvanced:     1.5,
}

// Streak bonus tiers, highest applicable tier only.
var streakBonusTiers = []struct {
	days  int
	bonus float64
}{
	{14, 0.30},
	{7, 0.20},
	{3, 0.10},
}

// RoundPoints is the award for one completed conversation round.
func RoundPoints(difficulty string, streak int) int {
	return points(roundBasePoints, difficulty, streak)
}

// SessionCompletionPoints is the bonus for finishing every round of a session.
func SessionCompletionPoints(difficulty string, streak int) int {
	return points(sessionCompletionBasePoints, difficulty, streak)
}

func points(base int, difficulty string, streak int) int {
	multiplier, ok := difficultyMultipliers[strings.ToLower(difficulty)]
	if !ok {
		multiplier = 1.0
	}
	bonus := 0.0
	for _, tier := range streakBonusTiers {
		if streak >= tier.days {
			bonus = tier.bonus
			break
		}
	}
	return int(math.Floor(float64(base) * multiplier * (1 + bonus)))
}

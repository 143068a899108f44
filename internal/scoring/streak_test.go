package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jst(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return loc
}

func TestStreakTracker_FirstActivity(t *testing.T) {
	tracker := NewStreakTracker(jst(t))

	result := tracker.Update(0, 0, nil, time.Now())

	assert.Equal(t, 1, result.Current)
	assert.Equal(t, 1, result.Longest)
	assert.True(t, result.ActiveToday)
}

func TestStreakTracker_ConsecutiveDay(t *testing.T) {
	tracker := NewStreakTracker(jst(t))
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)

	result := tracker.Update(4, 6, &yesterday, now)

	assert.Equal(t, 5, result.Current)
	assert.Equal(t, 6, result.Longest)
}

func TestStreakTracker_SameDayNoChange(t *testing.T) {
	tracker := NewStreakTracker(jst(t))
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-2 * time.Hour)

	result := tracker.Update(4, 4, &earlier, now)

	assert.Equal(t, 4, result.Current)
	assert.Equal(t, 4, result.Longest)
}

func TestStreakTracker_GapResets(t *testing.T) {
	tracker := NewStreakTracker(jst(t))
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	threeDaysAgo := now.Add(-72 * time.Hour)

	result := tracker.Update(9, 9, &threeDaysAgo, now)

	assert.Equal(t, 1, result.Current)
	assert.Equal(t, 9, result.Longest, "longest streak survives a reset")
}

func TestStreakTracker_LongestUpdatedWhenExceeded(t *testing.T) {
	tracker := NewStreakTracker(jst(t))
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)

	result := tracker.Update(6, 6, &yesterday, now)

	assert.Equal(t, 7, result.Current)
	assert.Equal(t, 7, result.Longest)
}

func TestStreakTracker_DayBoundaryIsLocal(t *testing.T) {
	tracker := NewStreakTracker(jst(t))

	// 14:00 UTC is 23:00 JST; 16:00 UTC the same UTC day is already 01:00 JST
	// the next day, so the two activities are consecutive local days.
	first := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 9, 16, 0, 0, 0, time.UTC)

	result := tracker.Update(2, 2, &first, second)

	assert.Equal(t, 3, result.Current)
}

func TestStreakTracker_IsActiveToday(t *testing.T) {
	tracker := NewStreakTracker(jst(t))
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.False(t, tracker.IsActiveToday(nil, now))

	today := now.Add(-1 * time.Hour)
	assert.True(t, tracker.IsActiveToday(&today, now))

	yesterday := now.Add(-24 * time.Hour)
	assert.False(t, tracker.IsActiveToday(&yesterday, now))
}

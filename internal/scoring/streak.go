package scoring

import "time"

// StreakTracker advances a user's daily-practice streak. Day boundaries are
// taken in a fixed location so late-night sessions count toward the right day.
type StreakTracker struct {
	loc *time.Location
}

func NewStreakTracker(loc *time.Location) *StreakTracker {
	if loc == nil {
		loc = time.UTC
	}
	return &StreakTracker{loc: loc}
}

// StreakResult is the streak state after an activity update.
type StreakResult struct {
	Current     int
	Longest     int
	ActiveToday bool
}

// Update advances the streak for activity at now. No prior activity starts the
// streak at 1; activity yesterday extends it; activity today leaves it alone;
// any longer gap resets it to 1. Longest never decreases.
func (t *StreakTracker) Update(current, longest int, lastActivity *time.Time, now time.Time) StreakResult {
	switch {
	case lastActivity == nil:
		current = 1
	default:
		switch t.daysBetween(*lastActivity, now) {
		case 0:
			// already counted today
		case 1:
			current++
		default:
			current = 1
		}
	}
	if current > longest {
		longest = current
	}
	return StreakResult{Current: current, Longest: longest, ActiveToday: true}
}

// IsActiveToday reports whether the last activity falls on today's local date.
func (t *StreakTracker) IsActiveToday(lastActivity *time.Time, now time.Time) bool {
	if lastActivity == nil {
		return false
	}
	return t.daysBetween(*lastActivity, now) == 0
}

func (t *StreakTracker) daysBetween(earlier, later time.Time) int {
	a := t.midnight(earlier)
	b := t.midnight(later)
	return int(b.Sub(a).Hours()/24 + 0.5)
}

func (t *StreakTracker) midnight(at time.Time) time.Time {
	local := at.In(t.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, t.loc)
}

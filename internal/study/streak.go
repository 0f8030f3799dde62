package study

import "time"

// RecordStudyActivity advances the streak for a qualifying completion at the
// given instant and returns the new state. Several events on the same day
// count once. An event dated before the last recorded study day leaves the
// streak untouched.
func RecordStudyActivity(streak Streak, at time.Time, loc *time.Location) Streak {
	today := StartOfDay(at, loc)

	if streak.LastStudyDate != nil {
		lastDay := StartOfDay(*streak.LastStudyDate, loc)
		switch gap := daysBetween(lastDay, today); {
		case gap <= 0:
			return streak
		case gap == 1:
			streak.CurrentStreak++
		default:
			streak.CurrentStreak = 1
		}
	} else {
		streak.CurrentStreak = 1
	}

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	stamp := at
	streak.LastStudyDate = &stamp
	return streak
}

// Broken reports whether the streak can no longer be extended as of now,
// i.e. the last study day is older than yesterday.
func (s Streak) Broken(now time.Time, loc *time.Location) bool {
	if s.LastStudyDate == nil {
		return s.CurrentStreak > 0
	}
	return daysBetween(StartOfDay(*s.LastStudyDate, loc), StartOfDay(now, loc)) > 1
}

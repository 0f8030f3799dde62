package study

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStudyActivity_FirstActivity(t *testing.T) {
	when := at(2024, 1, 1, 9, 30)

	s := RecordStudyActivity(Streak{}, when, utc)

	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)
	require.NotNil(t, s.LastStudyDate)
	assert.Equal(t, when, *s.LastStudyDate)
}

func TestRecordStudyActivity_SameDayIsIdempotent(t *testing.T) {
	first := RecordStudyActivity(Streak{}, at(2024, 1, 1, 9, 0), utc)
	second := RecordStudyActivity(first, at(2024, 1, 1, 23, 59), utc)

	assert.Equal(t, first, second)
	assert.Equal(t, at(2024, 1, 1, 9, 0), *second.LastStudyDate, "same-day events keep the original timestamp")
}

func TestRecordStudyActivity_ConsecutiveDays(t *testing.T) {
	var s Streak
	for i, want := range []int{1, 2, 3} {
		s = RecordStudyActivity(s, at(2024, 1, 1+i, 20, 0), utc)
		assert.Equal(t, want, s.CurrentStreak, "day %d", i)
		assert.Equal(t, want, s.LongestStreak, "day %d", i)
	}
}

func TestRecordStudyActivity_GapResets(t *testing.T) {
	s := RecordStudyActivity(Streak{}, at(2024, 1, 1, 8, 0), utc)
	s = RecordStudyActivity(s, at(2024, 1, 2, 8, 0), utc)
	s = RecordStudyActivity(s, at(2024, 1, 7, 8, 0), utc)

	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 2, s.LongestStreak)
	assert.Equal(t, at(2024, 1, 7, 8, 0), *s.LastStudyDate)
}

func TestRecordStudyActivity_LongestTracksRunningMax(t *testing.T) {
	s := Streak{CurrentStreak: 2, LongestStreak: 5, LastStudyDate: ptr(at(2024, 1, 1, 8, 0))}

	s = RecordStudyActivity(s, at(2024, 1, 2, 8, 0), utc)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 5, s.LongestStreak)

	s = RecordStudyActivity(s, at(2024, 1, 3, 8, 0), utc)
	s = RecordStudyActivity(s, at(2024, 1, 4, 8, 0), utc)
	s = RecordStudyActivity(s, at(2024, 1, 5, 8, 0), utc)
	assert.Equal(t, 6, s.CurrentStreak)
	assert.Equal(t, 6, s.LongestStreak)
}

func TestRecordStudyActivity_MidnightStraddle(t *testing.T) {
	base := RecordStudyActivity(Streak{}, at(2024, 1, 1, 12, 0), utc)

	before := RecordStudyActivity(base, time.Date(2024, 1, 1, 23, 59, 59, 999_000_000, utc), utc)
	after := RecordStudyActivity(base, time.Date(2024, 1, 2, 0, 0, 0, 1_000_000, utc), utc)

	assert.Equal(t, 1, before.CurrentStreak)
	assert.Equal(t, 2, after.CurrentStreak)
}

func TestRecordStudyActivity_OutOfOrderEventIgnored(t *testing.T) {
	s := Streak{CurrentStreak: 3, LongestStreak: 3, LastStudyDate: ptr(at(2024, 1, 10, 8, 0))}

	got := RecordStudyActivity(s, at(2024, 1, 8, 8, 0), utc)

	assert.Equal(t, s, got)
}

func TestRecordStudyActivity_DSTTransition(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks move forward on 2024-03-10; that day is 23 hours long.
	day1 := time.Date(2024, 3, 9, 23, 30, 0, 0, ny)
	day2 := time.Date(2024, 3, 10, 23, 30, 0, 0, ny)
	day3 := time.Date(2024, 3, 11, 0, 15, 0, 0, ny)

	s := RecordStudyActivity(Streak{}, day1, ny)
	s = RecordStudyActivity(s, day2, ny)
	s = RecordStudyActivity(s, day3, ny)

	assert.Equal(t, 3, s.CurrentStreak)
}

func TestRecordStudyActivity_UsesLocationForDays(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 14:00 and 16:00 UTC fall on the same UTC day but on different Tokyo days.
	s := RecordStudyActivity(Streak{}, at(2024, 1, 1, 14, 0), tokyo)
	s = RecordStudyActivity(s, at(2024, 1, 1, 16, 0), tokyo)
	assert.Equal(t, 2, s.CurrentStreak)

	u := RecordStudyActivity(Streak{}, at(2024, 1, 1, 14, 0), utc)
	u = RecordStudyActivity(u, at(2024, 1, 1, 16, 0), utc)
	assert.Equal(t, 1, u.CurrentStreak)
}

func TestStreakBroken(t *testing.T) {
	last := at(2024, 1, 5, 21, 0)
	s := Streak{CurrentStreak: 4, LongestStreak: 4, LastStudyDate: &last}

	assert.False(t, s.Broken(at(2024, 1, 5, 22, 0), utc))
	assert.False(t, s.Broken(at(2024, 1, 6, 22, 0), utc))
	assert.True(t, s.Broken(at(2024, 1, 7, 0, 1), utc))
	assert.False(t, Streak{}.Broken(at(2024, 1, 7, 0, 1), utc))
}

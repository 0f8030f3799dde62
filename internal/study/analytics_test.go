package study

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utc = time.UTC

func ptr[T any](v T) *T { return &v }

func at(y int, m time.Month, d, h, mi int) time.Time {
	return time.Date(y, m, d, h, mi, 0, 0, utc)
}

func completedTask(subject string, minutes *int, completedAt time.Time) Task {
	t := Task{Status: StatusCompleted, ActualDuration: minutes, CompletedAt: ptr(completedAt)}
	if subject != "" {
		t.Subject = ptr(subject)
	}
	return t
}

func completedSession(minutes int, completedAt time.Time) PomodoroSession {
	return PomodoroSession{FocusDuration: minutes, WasCompleted: true, CompletedAt: ptr(completedAt)}
}

func TestComputeSummary_Empty(t *testing.T) {
	sum := ComputeSummary(nil, nil, Streak{}, at(2024, 1, 1, 12, 0), utc)

	assert.Equal(t, 0, sum.CompletionRate)
	assert.Equal(t, 0, sum.FocusEfficiency)
	assert.Equal(t, 0, sum.TotalStudyTime)
	assert.NotNil(t, sum.SubjectDistribution)
	assert.Empty(t, sum.SubjectDistribution)
}

func TestComputeSummary_TodayScenario(t *testing.T) {
	now := at(2024, 3, 10, 18, 0)
	tasks := []Task{completedTask("Math", ptr(60), at(2024, 3, 10, 9, 0))}
	sessions := []PomodoroSession{completedSession(25, at(2024, 3, 10, 10, 0))}

	sum := ComputeSummary(tasks, sessions, Streak{CurrentStreak: 4, LongestStreak: 6}, now, utc)

	assert.Equal(t, 25, sum.TodayStudyTime)
	assert.Equal(t, 25, sum.WeekStudyTime)
	assert.Equal(t, 25, sum.TotalStudyTime)
	assert.Equal(t, 1, sum.TasksCompletedToday)
	assert.Equal(t, 1, sum.TasksCompletedWeek)
	assert.Equal(t, []SubjectMinutes{{Subject: "Math", Minutes: 60}}, sum.SubjectDistribution)
	assert.Equal(t, 100, sum.CompletionRate)
	assert.Equal(t, 100, sum.FocusEfficiency)
	assert.Equal(t, 4, sum.CurrentStreak)
	assert.Equal(t, 6, sum.LongestStreak)
}

func TestComputeSummary_AbandonedSession(t *testing.T) {
	sessions := []PomodoroSession{{FocusDuration: 25, WasCompleted: false}}

	sum := ComputeSummary(nil, sessions, Streak{}, at(2024, 1, 1, 12, 0), utc)

	assert.Equal(t, 0, sum.TotalStudyTime)
	assert.Equal(t, 0, sum.FocusEfficiency)
}

func TestComputeSummary_Windows(t *testing.T) {
	now := at(2024, 3, 10, 8, 0)
	sessions := []PomodoroSession{
		completedSession(25, at(2024, 3, 10, 0, 0)), // today, exactly midnight
		completedSession(30, at(2024, 3, 9, 23, 59)), // yesterday
		completedSession(45, at(2024, 3, 3, 0, 0)),  // weekStart, inclusive
		completedSession(50, at(2024, 3, 2, 23, 59)), // outside week
		{FocusDuration: 20, WasCompleted: true},      // no completedAt: total only
	}
	tasks := []Task{
		completedTask("", nil, at(2024, 3, 10, 7, 0)),
		completedTask("", nil, at(2024, 3, 5, 7, 0)),
		completedTask("", nil, at(2024, 2, 1, 7, 0)),
		{Status: StatusCompleted}, // missing completedAt
	}

	sum := ComputeSummary(tasks, sessions, Streak{}, now, utc)

	assert.Equal(t, 170, sum.TotalStudyTime)
	assert.Equal(t, 25, sum.TodayStudyTime)
	assert.Equal(t, 100, sum.WeekStudyTime)
	assert.Equal(t, 1, sum.TasksCompletedToday)
	assert.Equal(t, 2, sum.TasksCompletedWeek)
}

func TestComputeSummary_RatesRound(t *testing.T) {
	tasks := []Task{
		completedTask("", nil, at(2024, 1, 1, 0, 0)),
		{Status: StatusPending},
		{Status: StatusInProgress},
	}
	sessions := []PomodoroSession{
		completedSession(25, at(2024, 1, 1, 0, 0)),
		completedSession(25, at(2024, 1, 1, 0, 0)),
		{FocusDuration: 25},
	}

	sum := ComputeSummary(tasks, sessions, Streak{}, at(2024, 1, 2, 0, 0), utc)

	assert.Equal(t, 33, sum.CompletionRate)
	assert.Equal(t, 67, sum.FocusEfficiency)
}

func TestComputeSummary_SubjectDistribution(t *testing.T) {
	day := at(2024, 1, 1, 10, 0)
	tasks := []Task{
		completedTask("Physics", ptr(30), day),
		completedTask("Math", ptr(60), day),
		completedTask("Physics", ptr(40), day),
		completedTask("History", nil, day), // no duration: excluded
		completedTask("", ptr(90), day),    // no subject: excluded
		{Status: StatusPending, Subject: ptr("Chemistry"), ActualDuration: ptr(15)},
	}

	sum := ComputeSummary(tasks, nil, Streak{}, day, utc)

	assert.Equal(t, []SubjectMinutes{
		{Subject: "Physics", Minutes: 70},
		{Subject: "Math", Minutes: 60},
	}, sum.SubjectDistribution)
}

func TestComputeSummary_LocalDayBoundary(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2024-01-01 23:30 UTC is 2024-01-02 08:30 in Tokyo.
	now := at(2024, 1, 1, 23, 30)
	sessions := []PomodoroSession{completedSession(25, at(2024, 1, 1, 14, 0))} // 23:00 Tokyo on Jan 1

	assert.Equal(t, 25, ComputeSummary(nil, sessions, Streak{}, now, utc).TodayStudyTime)
	assert.Equal(t, 0, ComputeSummary(nil, sessions, Streak{}, now, tokyo).TodayStudyTime)
}

func TestComputeDailyStats_MergesSameDay(t *testing.T) {
	tasks := []Task{completedTask("Math", ptr(60), at(2024, 1, 1, 9, 0))}
	sessions := []PomodoroSession{completedSession(25, at(2024, 1, 1, 15, 0))}

	stats := ComputeDailyStats(tasks, sessions, utc)

	require.Len(t, stats, 1)
	assert.Equal(t, DailyStats{
		Date:                      "2024-01-01",
		TotalMinutesStudied:       85,
		TasksCompleted:            1,
		PomodoroSessionsCompleted: 1,
		SubjectBreakdown:          map[string]int{"Math": 60},
	}, stats[0])
}

func TestComputeDailyStats_SortedUnionOfDates(t *testing.T) {
	tasks := []Task{
		completedTask("Math", ptr(30), at(2024, 1, 3, 9, 0)),
		completedTask("", nil, at(2024, 1, 1, 9, 0)),
	}
	sessions := []PomodoroSession{
		completedSession(25, at(2024, 1, 2, 9, 0)),
		{FocusDuration: 25, WasCompleted: false},
	}

	stats := ComputeDailyStats(tasks, sessions, utc)

	require.Len(t, stats, 3)
	assert.Equal(t, "2024-01-01", stats[0].Date)
	assert.Equal(t, 1, stats[0].TasksCompleted)
	assert.Equal(t, 0, stats[0].TotalMinutesStudied)
	assert.Empty(t, stats[0].SubjectBreakdown)

	assert.Equal(t, "2024-01-02", stats[1].Date)
	assert.Equal(t, 0, stats[1].TasksCompleted)
	assert.Equal(t, 1, stats[1].PomodoroSessionsCompleted)
	assert.Equal(t, 25, stats[1].TotalMinutesStudied)

	assert.Equal(t, "2024-01-03", stats[2].Date)
	assert.Equal(t, map[string]int{"Math": 30}, stats[2].SubjectBreakdown)
}

func TestComputeDailyStats_SkipsIncompleteRecords(t *testing.T) {
	tasks := []Task{
		{Status: StatusCompleted}, // completed without completedAt
		{Status: StatusPending, CompletedAt: ptr(at(2024, 1, 1, 0, 0))},
	}
	sessions := []PomodoroSession{{FocusDuration: 25, WasCompleted: true}}

	assert.Empty(t, ComputeDailyStats(tasks, sessions, utc))
}

func TestComputeDailyStats_UsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	sessions := []PomodoroSession{completedSession(25, at(2024, 1, 2, 3, 0))} // Jan 1 22:00 in New York

	stats := ComputeDailyStats(nil, sessions, ny)
	require.Len(t, stats, 1)
	assert.Equal(t, "2024-01-01", stats[0].Date)
}

func TestStartOfDayAndDateKey(t *testing.T) {
	ts := at(2024, 5, 6, 13, 45)
	assert.Equal(t, at(2024, 5, 6, 0, 0), StartOfDay(ts, utc))
	assert.Equal(t, "2024-05-06", DateKey(ts, utc))

	parsed, err := ParseDateKey("2024-05-06", utc)
	require.NoError(t, err)
	assert.Equal(t, at(2024, 5, 6, 0, 0), parsed)

	_, err = ParseDateKey("06/05/2024", utc)
	assert.Error(t, err)
}

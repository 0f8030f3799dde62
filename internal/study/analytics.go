// Package study holds the study records and the aggregation engine that turns
// them into summaries, daily rollups and streak transitions. Nothing here
// performs I/O; callers pass a snapshot of records and a reference instant.
package study

import (
	"math"
	"sort"
	"time"
)

// WeekWindowDays is the length of the rolling week window.
const WeekWindowDays = 7

// ComputeSummary builds the analytics snapshot for now. The streak is passed
// through unchanged.
func ComputeSummary(tasks []Task, sessions []PomodoroSession, streak Streak, now time.Time, loc *time.Location) Summary {
	today := StartOfDay(now, loc)
	weekStart := today.AddDate(0, 0, -WeekWindowDays)

	sum := Summary{
		CurrentStreak:       streak.CurrentStreak,
		LongestStreak:       streak.LongestStreak,
		SubjectDistribution: []SubjectMinutes{},
	}

	completedSessions := 0
	for _, s := range sessions {
		if !s.WasCompleted {
			continue
		}
		completedSessions++
		sum.TotalStudyTime += s.FocusDuration
		if s.CompletedAt == nil {
			continue
		}
		if !s.CompletedAt.Before(today) {
			sum.TodayStudyTime += s.FocusDuration
		}
		if !s.CompletedAt.Before(weekStart) {
			sum.WeekStudyTime += s.FocusDuration
		}
	}

	completedTasks := 0
	subjects := make(map[string]int)
	for _, t := range tasks {
		if !t.Completed() {
			continue
		}
		completedTasks++
		if t.CompletedAt != nil {
			if !t.CompletedAt.Before(today) {
				sum.TasksCompletedToday++
			}
			if !t.CompletedAt.Before(weekStart) {
				sum.TasksCompletedWeek++
			}
		}
		if subject := t.SubjectName(); subject != "" && t.ActualDuration != nil {
			subjects[subject] += *t.ActualDuration
		}
	}

	for subject, minutes := range subjects {
		sum.SubjectDistribution = append(sum.SubjectDistribution, SubjectMinutes{Subject: subject, Minutes: minutes})
	}
	sort.Slice(sum.SubjectDistribution, func(i, j int) bool {
		a, b := sum.SubjectDistribution[i], sum.SubjectDistribution[j]
		if a.Minutes != b.Minutes {
			return a.Minutes > b.Minutes
		}
		return a.Subject < b.Subject
	})

	sum.CompletionRate = percent(completedTasks, len(tasks))
	sum.FocusEfficiency = percent(completedSessions, len(sessions))
	return sum
}

// ComputeDailyStats rolls completed tasks and sessions up into one entry per
// calendar day, ascending by date. Records without a completion instant are
// skipped.
func ComputeDailyStats(tasks []Task, sessions []PomodoroSession, loc *time.Location) []DailyStats {
	byDate := make(map[string]*DailyStats)
	entry := func(at time.Time) *DailyStats {
		key := DateKey(at, loc)
		ds, ok := byDate[key]
		if !ok {
			ds = &DailyStats{Date: key, SubjectBreakdown: map[string]int{}}
			byDate[key] = ds
		}
		return ds
	}

	for _, t := range tasks {
		if !t.Completed() || t.CompletedAt == nil {
			continue
		}
		ds := entry(*t.CompletedAt)
		ds.TasksCompleted++
		if t.ActualDuration == nil {
			continue
		}
		ds.TotalMinutesStudied += *t.ActualDuration
		if subject := t.SubjectName(); subject != "" {
			ds.SubjectBreakdown[subject] += *t.ActualDuration
		}
	}

	for _, s := range sessions {
		if !s.WasCompleted || s.CompletedAt == nil {
			continue
		}
		ds := entry(*s.CompletedAt)
		ds.PomodoroSessionsCompleted++
		ds.TotalMinutesStudied += s.FocusDuration
	}

	stats := make([]DailyStats, 0, len(byDate))
	for _, ds := range byDate {
		stats = append(stats, *ds)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date < stats[j].Date })
	return stats
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/studyr/internal/study"
)

// Seed loads a small sample workload: four tasks, three goals, five finished
// focus sessions from the last hours and a three-day streak.
func (s *Store) Seed(ctx context.Context) error {
	now := s.stamp()
	day := 24 * time.Hour
	str := func(v string) *string { return &v }
	num := func(v int) *int { return &v }
	at := func(d time.Duration) *time.Time { t := now.Add(d); return &t }

	tasks := []study.Task{
		{
			Title:             "Revise Chapter 5: Thermodynamics",
			Description:       str("Complete all formulas and solve practice problems"),
			Status:            study.StatusPending,
			Priority:          study.PriorityCritical,
			Subject:           str("Physics"),
			Deadline:          at(2 * day),
			EstimatedDuration: num(120),
			Resources:         []string{"https://example.com/physics-chapter5.pdf"},
		},
		{
			Title:             "Practice Calculus Problems",
			Description:       str("Solve integration and differentiation exercises"),
			Status:            study.StatusInProgress,
			Priority:          study.PriorityImportant,
			Subject:           str("Math"),
			Deadline:          at(day),
			EstimatedDuration: num(90),
		},
		{
			Title:             "Read History Chapter 12",
			Description:       str("World War II and its aftermath"),
			Status:            study.StatusPending,
			Priority:          study.PriorityOptional,
			Subject:           str("History"),
			Deadline:          at(3 * day),
			EstimatedDuration: num(60),
		},
		{
			Title:          "Chemistry Lab Report",
			Description:    str("Write up the titration experiment results"),
			Status:         study.StatusCompleted,
			Priority:       study.PriorityImportant,
			Subject:        str("Chemistry"),
			CompletedAt:    at(0),
			ActualDuration: num(75),
		},
	}

	goals := []study.Goal{
		{
			Title:       "Complete 3 Physics chapters",
			Description: str("Finish chapters 5, 6, and 7 before the exam"),
			Type:        study.GoalWeekly,
			TargetDate:  now.Add(7 * day),
			Progress:    33,
		},
		{
			Title:       "Study 2 hours daily",
			Description: str("Maintain consistent study schedule"),
			Type:        study.GoalDaily,
			TargetDate:  now,
			Progress:    50,
		},
		{
			Title:       "Finish entire Math syllabus",
			Description: str("Complete all topics before final exam"),
			Type:        study.GoalMonthly,
			TargetDate:  now.Add(30 * day),
			Progress:    60,
		},
	}

	s.streakMu.Lock()
	defer s.streakMu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range tasks {
			t := &tasks[i]
			t.ID = newID()
			t.CreatedAt = now
			if t.Resources == nil {
				t.Resources = []string{}
			}
			if err := insertTask(ctx, tx, t); err != nil {
				return err
			}
		}

		for _, g := range goals {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, 'active', ?, '[]', NULL, ?)`,
				newID(), g.Title, nullString(g.Description), g.Type, formatTime(g.TargetDate), g.Progress,
				formatTime(now),
			)
			if err != nil {
				return fmt.Errorf("insert goal: %w", err)
			}
		}

		for i := range 5 {
			ts := now.Add(-time.Duration(i) * time.Hour)
			_, err := tx.ExecContext(ctx,
				`INSERT INTO pomodoro_sessions (`+sessionColumns+`) VALUES (?, ?, 25, 5, 1, ?, ?)`,
				newID(), tasks[0].ID, formatTime(ts), formatTime(ts),
			)
			if err != nil {
				return fmt.Errorf("insert pomodoro session: %w", err)
			}
		}

		return writeStreak(ctx, tx, study.Streak{
			CurrentStreak: 3,
			LongestStreak: 5,
			LastStudyDate: &now,
		}, now)
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	s.log.Info("sample data loaded", "tasks", len(tasks), "goals", len(goals), "sessions", 5)
	return nil
}

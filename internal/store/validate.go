package store

import (
	"strings"

	"github.com/sadopc/studyr/internal/study"
)

func (in *TaskInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = study.StatusPending
	}
	if in.Priority == "" {
		in.Priority = study.PriorityImportant
	}
	if in.Resources == nil {
		in.Resources = []string{}
	}

	v := &study.ValidationError{Kind: "task"}
	if in.Title == "" {
		v.Add("title", "is required")
	}
	if !in.Status.Valid() {
		v.Add("status", "must be one of pending, in_progress, completed")
	}
	if !in.Priority.Valid() {
		v.Add("priority", "must be one of critical, important, optional")
	}
	checkMinutes(v, "estimatedDuration", in.EstimatedDuration)
	checkMinutes(v, "actualDuration", in.ActualDuration)
	return v.Err()
}

func (p *TaskPatch) validate() error {
	v := &study.ValidationError{Kind: "task"}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		v.Add("title", "must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		v.Add("status", "must be one of pending, in_progress, completed")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		v.Add("priority", "must be one of critical, important, optional")
	}
	checkMinutes(v, "estimatedDuration", p.EstimatedDuration.Value)
	checkMinutes(v, "actualDuration", p.ActualDuration.Value)
	return v.Err()
}

func (in *GoalInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = study.GoalActive
	}
	if in.RelatedTaskIDs == nil {
		in.RelatedTaskIDs = []string{}
	}

	v := &study.ValidationError{Kind: "goal"}
	if in.Title == "" {
		v.Add("title", "is required")
	}
	if !in.Type.Valid() {
		v.Add("type", "must be one of daily, weekly, monthly")
	}
	if !in.Status.Valid() {
		v.Add("status", "must be one of active, completed, cancelled")
	}
	if in.TargetDate.IsZero() {
		v.Add("targetDate", "is required")
	}
	checkProgress(v, in.Progress)
	return v.Err()
}

func (p *GoalPatch) validate() error {
	v := &study.ValidationError{Kind: "goal"}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		v.Add("title", "must not be empty")
	}
	if p.Type != nil && !p.Type.Valid() {
		v.Add("type", "must be one of daily, weekly, monthly")
	}
	if p.Status != nil && !p.Status.Valid() {
		v.Add("status", "must be one of active, completed, cancelled")
	}
	if p.Progress != nil {
		checkProgress(v, *p.Progress)
	}
	return v.Err()
}

func (in *SessionInput) validate() error {
	v := &study.ValidationError{Kind: "session"}
	if in.FocusDuration <= 0 {
		v.Add("focusDuration", "must be positive")
	}
	if in.BreakDuration < 0 {
		v.Add("breakDuration", "must not be negative")
	}
	return v.Err()
}

func (p *SettingsPatch) validate() error {
	v := &study.ValidationError{Kind: "settings"}
	positive := map[string]*int{
		"pomodoroFocusDuration":     p.PomodoroFocusDuration,
		"pomodoroBreakDuration":     p.PomodoroBreakDuration,
		"pomodoroLongBreakDuration": p.PomodoroLongBreakDuration,
		"pomodoroCount":             p.PomodoroCount,
	}
	for _, field := range []string{"pomodoroFocusDuration", "pomodoroBreakDuration", "pomodoroLongBreakDuration", "pomodoroCount"} {
		if n := positive[field]; n != nil && *n <= 0 {
			v.Add(field, "must be positive")
		}
	}
	if p.Theme != nil && *p.Theme != "dark" && *p.Theme != "light" {
		v.Add("theme", "must be dark or light")
	}
	return v.Err()
}

func checkMinutes(v *study.ValidationError, field string, n *int) {
	if n != nil && *n < 0 {
		v.Add(field, "must not be negative")
	}
}

func checkProgress(v *study.ValidationError, n int) {
	if n < 0 || n > 100 {
		v.Add("progress", "must be between 0 and 100")
	}
}

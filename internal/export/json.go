package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyr/internal/study"
)

// Document is the full export: derived analytics plus every raw record.
type Document struct {
	ExportedAt string                  `json:"exportedAt"`
	Summary    study.Summary           `json:"summary"`
	Streak     study.Streak            `json:"streak"`
	Daily      []study.DailyStats      `json:"daily"`
	Tasks      []study.Task            `json:"tasks"`
	Goals      []study.Goal            `json:"goals"`
	Sessions   []study.PomodoroSession `json:"pomodoroSessions"`
}

// NewDocument assembles a Document, replacing nil slices with empty ones so
// consumers always see arrays.
func NewDocument(now time.Time, summary study.Summary, streak study.Streak, daily []study.DailyStats,
	tasks []study.Task, goals []study.Goal, sessions []study.PomodoroSession) Document {
	return Document{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Summary:    summary,
		Streak:     streak,
		Daily:      orEmpty(daily),
		Tasks:      orEmpty(tasks),
		Goals:      orEmpty(goals),
		Sessions:   orEmpty(sessions),
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func ToJSON(doc Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

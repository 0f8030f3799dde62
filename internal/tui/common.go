package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/studyr/internal/study"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewTasks
	viewGoals
	viewReports
	viewPomodoro
	viewSettings
)

var viewNames = []string{"Dashboard", "Tasks", "Goals", "Reports", "Pomodoro", "Settings"}

// --- Messages ---

type timerStartedMsg struct {
	task study.Task
}

type timerStoppedMsg struct {
	task    study.Task
	minutes int
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// sessionRecordedMsg follows every pomodoro session written to the store.
type sessionRecordedMsg struct {
	session *study.PomodoroSession
}

// dataChangedMsg asks views that show aggregates to reload.
type dataChangedMsg struct{}

type exportDoneMsg struct {
	path string
}

var errTaskCompleted = errors.New("task is already completed")

// --- Helpers ---

func errStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatMinutes renders minutes as "1h 05m", or "25m" below an hour.
func formatMinutes(mins int) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}

func formatHours(mins int) string {
	return fmt.Sprintf("%.1fh", float64(mins)/60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

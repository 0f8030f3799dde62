package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

type pomodoroPhase int

const (
	pomodoroIdle pomodoroPhase = iota
	pomodoroWork
	pomodoroShortBreak
	pomodoroLongBreak
	pomodoroCompleted
)

var phaseNames = map[pomodoroPhase]string{
	pomodoroIdle:       "IDLE",
	pomodoroWork:       "FOCUS",
	pomodoroShortBreak: "SHORT BREAK",
	pomodoroLongBreak:  "LONG BREAK",
	pomodoroCompleted:  "COMPLETED",
}

// pomodoroModel runs a cycle of focus phases separated by breaks. Every
// finished focus phase is recorded as a completed session; cancelling during
// focus records an abandoned one.
type pomodoroModel struct {
	store  *store.Store
	width  int
	height int

	phase          pomodoroPhase
	completedCount int
	targetCount    int

	// Countdown state
	remaining time.Duration
	phaseEnd  time.Time

	// Durations from settings
	workDuration      time.Duration
	breakDuration     time.Duration
	longBreakDuration time.Duration

	// Optional task the focus time is spent on
	tasks      []study.Task
	taskCursor int // 0 = no task, i = tasks[i-1]
}

func newPomodoroModel(s *store.Store) pomodoroModel {
	m := pomodoroModel{
		store:       s,
		phase:       pomodoroIdle,
		targetCount: 4,
	}
	m.loadSettings()
	return m
}

func (p *pomodoroModel) loadSettings() {
	p.workDuration = 25 * time.Minute
	p.breakDuration = 5 * time.Minute
	p.longBreakDuration = 15 * time.Minute

	settings, err := p.store.GetSettings(context.Background())
	if err != nil {
		return
	}
	p.workDuration = time.Duration(settings.PomodoroFocusDuration) * time.Minute
	p.breakDuration = time.Duration(settings.PomodoroBreakDuration) * time.Minute
	p.longBreakDuration = time.Duration(settings.PomodoroLongBreakDuration) * time.Minute
	p.targetCount = settings.PomodoroCount
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type pomodoroTasksMsg struct {
	tasks []study.Task
}

// refresh reloads settings and the open tasks a session can be linked to.
func (p pomodoroModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, _ := p.store.ListTasks(context.Background(), store.TaskFilter{})
		var open []study.Task
		for _, t := range tasks {
			if !t.Completed() {
				open = append(open, t)
			}
		}
		return pomodoroTasksMsg{tasks: open}
	}
}

func (p pomodoroModel) selectedTask() *study.Task {
	if p.taskCursor == 0 || p.taskCursor > len(p.tasks) {
		return nil
	}
	return &p.tasks[p.taskCursor-1]
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	switch msg := msg.(type) {
	case pomodoroTasksMsg:
		var selected string
		if t := p.selectedTask(); t != nil {
			selected = t.ID
		}
		p.tasks = msg.tasks
		p.taskCursor = 0
		for i, t := range p.tasks {
			if t.ID == selected {
				p.taskCursor = i + 1
			}
		}
		if p.phase == pomodoroIdle || p.phase == pomodoroCompleted {
			p.loadSettings()
		}
		return p, nil

	case tickMsg:
		if p.phase == pomodoroWork || p.phase == pomodoroShortBreak || p.phase == pomodoroLongBreak {
			p.remaining = time.Until(p.phaseEnd)
			if p.remaining <= 0 {
				return p.advancePhase()
			}
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if p.phase == pomodoroIdle || p.phase == pomodoroCompleted {
				return p.startSession()
			}
		case key.Matches(msg, keys.Stop):
			if p.phase != pomodoroIdle {
				return p.cancelSession()
			}
		case key.Matches(msg, keys.Pause):
			// Skip break
			if p.phase == pomodoroShortBreak || p.phase == pomodoroLongBreak {
				return p.advancePhase()
			}
		case key.Matches(msg, keys.Left):
			if p.phase == pomodoroIdle || p.phase == pomodoroCompleted {
				p.taskCursor = (p.taskCursor + len(p.tasks)) % (len(p.tasks) + 1)
			}
		case key.Matches(msg, keys.Right):
			if p.phase == pomodoroIdle || p.phase == pomodoroCompleted {
				p.taskCursor = (p.taskCursor + 1) % (len(p.tasks) + 1)
			}
		}
	}
	return p, nil
}

func (p pomodoroModel) startSession() (pomodoroModel, tea.Cmd) {
	p.completedCount = 0
	p.loadSettings()
	return p.startWorkPhase()
}

func (p pomodoroModel) startWorkPhase() (pomodoroModel, tea.Cmd) {
	p.phase = pomodoroWork
	p.remaining = p.workDuration
	p.phaseEnd = time.Now().Add(p.workDuration)
	return p, nil
}

// recordSession writes one terminated focus phase.
func (p pomodoroModel) recordSession(completed bool) tea.Cmd {
	in := store.SessionInput{
		FocusDuration: int(p.workDuration / time.Minute),
		BreakDuration: int(p.breakDuration / time.Minute),
		WasCompleted:  completed,
	}
	if t := p.selectedTask(); t != nil {
		in.TaskID = &t.ID
	}
	s := p.store
	return func() tea.Msg {
		session, err := s.CreatePomodoroSession(context.Background(), in)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return sessionRecordedMsg{session: session}
	}
}

// advancePhase ends the current phase. Focus phases alternate with short
// breaks; the last focus phase of the cycle is followed by a long break.
func (p pomodoroModel) advancePhase() (pomodoroModel, tea.Cmd) {
	switch p.phase {
	case pomodoroWork:
		p.completedCount++
		record := p.recordSession(true)

		if p.completedCount >= p.targetCount {
			p.phase = pomodoroLongBreak
			p.remaining = p.longBreakDuration
			p.phaseEnd = time.Now().Add(p.longBreakDuration)
		} else {
			p.phase = pomodoroShortBreak
			p.remaining = p.breakDuration
			p.phaseEnd = time.Now().Add(p.breakDuration)
		}
		return p, tea.Batch(record, func() tea.Msg {
			return statusMsg{text: "Focus session complete. Break time! \a"}
		})

	case pomodoroShortBreak:
		return p.startWorkPhase()

	case pomodoroLongBreak:
		p.phase = pomodoroCompleted
		p.remaining = 0
		return p, func() tea.Msg {
			return statusMsg{text: "Pomodoro cycle complete! \a"}
		}
	}
	return p, nil
}

func (p pomodoroModel) cancelSession() (pomodoroModel, tea.Cmd) {
	var record tea.Cmd
	if p.phase == pomodoroWork {
		record = p.recordSession(false)
	}
	p.phase = pomodoroIdle
	p.remaining = 0
	return p, tea.Batch(record, func() tea.Msg {
		return statusMsg{text: "Pomodoro cancelled"}
	})
}

func (p pomodoroModel) view() string {
	w := p.width - 4

	title := titleStyle.Render("Pomodoro Timer")

	var timeDisplay string
	var phaseLabel string
	var indicator string

	switch p.phase {
	case pomodoroIdle:
		timeDisplay = timerStyle.Width(w - 6).Render(formatPomodoroTime(p.workDuration))
		phaseLabel = mutedStyle.Render("Ready to start")
		indicator = mutedStyle.Render("Press s to begin")
	case pomodoroWork:
		timeDisplay = accentStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatPomodoroTime(p.remaining))
		phaseLabel = accentStyle.Bold(true).Render(phaseNames[p.phase])
		indicator = p.renderProgress()
	case pomodoroShortBreak:
		timeDisplay = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatPomodoroTime(p.remaining))
		phaseLabel = successStyle.Bold(true).Render(phaseNames[p.phase])
		indicator = p.renderProgress()
	case pomodoroLongBreak:
		timeDisplay = highlightStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatPomodoroTime(p.remaining))
		phaseLabel = highlightStyle.Bold(true).Render(phaseNames[p.phase])
		indicator = p.renderProgress()
	case pomodoroCompleted:
		timeDisplay = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("Done!")
		phaseLabel = successStyle.Bold(true).Render("CYCLE COMPLETE")
		indicator = p.renderProgress()
	}

	taskLine := mutedStyle.Render("No task")
	if t := p.selectedTask(); t != nil {
		taskLine = subjectDot(t.SubjectName()) + " " + highlightStyle.Render(t.Title)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		phaseLabel,
		"",
		taskLine,
		indicator,
	)

	var controls string
	switch p.phase {
	case pomodoroIdle, pomodoroCompleted:
		controls = mutedStyle.Render("s: start  ←/→: choose task")
	case pomodoroWork:
		controls = mutedStyle.Render("x: abandon")
	case pomodoroShortBreak, pomodoroLongBreak:
		controls = mutedStyle.Render("space: skip break  x: stop")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

func (p pomodoroModel) renderProgress() string {
	var parts []string
	for i := 0; i < p.targetCount; i++ {
		if i < p.completedCount {
			parts = append(parts, successStyle.Render("●"))
		} else if i == p.completedCount && p.phase == pomodoroWork {
			parts = append(parts, accentStyle.Render("◐"))
		} else {
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	progress := strings.Join(parts, " ")
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d", p.completedCount, p.targetCount))
	return progress + counter
}

func formatPomodoroTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

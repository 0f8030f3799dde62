package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

type dashboardModel struct {
	store  *store.Store
	timer  timerModel
	width  int
	height int

	summary   study.Summary
	streak    study.Streak
	openTasks []study.Task
	recent    []study.Task

	// Task picker state
	picking      bool
	pickerCursor int
}

func newDashboardModel(s *store.Store) dashboardModel {
	return dashboardModel{
		store: s,
		timer: newTimerModel(s),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

type dashboardDataMsg struct {
	summary   study.Summary
	streak    study.Streak
	openTasks []study.Task
	recent    []study.Task
	err       error
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		summary, err := d.store.AnalyticsSummary(ctx)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		streak, err := d.store.GetStreak(ctx)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		tasks, err := d.store.ListTasks(ctx, store.TaskFilter{})
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		open, recent := splitTasks(tasks)
		return dashboardDataMsg{summary: summary, streak: streak, openTasks: open, recent: recent}
	}
}

// splitTasks returns open tasks in working order (in progress first, then by
// priority and deadline) and the five most recent completions.
func splitTasks(tasks []study.Task) (open, recent []study.Task) {
	for _, t := range tasks {
		if t.Completed() {
			recent = append(recent, t)
		} else {
			open = append(open, t)
		}
	}

	rank := map[study.Priority]int{study.PriorityCritical: 0, study.PriorityImportant: 1, study.PriorityOptional: 2}
	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i], open[j]
		if (a.Status == study.StatusInProgress) != (b.Status == study.StatusInProgress) {
			return a.Status == study.StatusInProgress
		}
		if rank[a.Priority] != rank[b.Priority] {
			return rank[a.Priority] < rank[b.Priority]
		}
		switch {
		case a.Deadline == nil:
			return false
		case b.Deadline == nil:
			return true
		}
		return a.Deadline.Before(*b.Deadline)
	})

	sort.SliceStable(recent, func(i, j int) bool {
		a, b := recent[i].CompletedAt, recent[j].CompletedAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return open, recent
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		if msg.err != nil {
			return d, errStatus(msg.err)
		}
		d.summary = msg.summary
		d.streak = msg.streak
		d.openTasks = msg.openTasks
		d.recent = msg.recent
		if d.pickerCursor >= len(d.openTasks) {
			d.pickerCursor = max(0, len(d.openTasks)-1)
		}
		return d, nil

	case dataChangedMsg:
		return d, d.loadData()

	case tickMsg:
		d.timer.tick()
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity()

		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			if len(d.openTasks) == 0 {
				return d, func() tea.Msg {
					return statusMsg{text: "No open tasks. Press 2 to go to Tasks and create one.", isError: true}
				}
			}
			if len(d.openTasks) == 1 {
				return d.startTimer(d.openTasks[0])
			}
			d.picking = true
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.Stop):
			return d.stopTimer()

		case key.Matches(msg, keys.Pause):
			d.timer.toggle()
			return d, nil

		case key.Matches(msg, keys.Complete):
			if !d.timer.running() {
				return d, nil
			}
			return d.completeTimedTask()
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.openTasks)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		if d.pickerCursor < len(d.openTasks) {
			return d.startTimer(d.openTasks[d.pickerCursor])
		}
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) startTimer(t study.Task) (dashboardModel, tea.Cmd) {
	if err := d.timer.start(t); err != nil {
		return d, errStatus(err)
	}
	task := d.timer.task
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStartedMsg{task: task} },
	)
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	if !d.timer.running() {
		return d, nil
	}
	minutes, err := d.timer.stop()
	if err != nil {
		return d, errStatus(err)
	}
	task := d.timer.task
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{task: task, minutes: minutes} },
	)
}

// completeTimedTask stops the timer and marks its task completed, which
// records study activity for the streak.
func (d dashboardModel) completeTimedTask() (dashboardModel, tea.Cmd) {
	minutes, err := d.timer.stop()
	if err != nil {
		return d, errStatus(err)
	}
	status := study.StatusCompleted
	task, err := d.store.UpdateTask(context.Background(), d.timer.task.ID, store.TaskPatch{Status: &status})
	if err != nil {
		return d, errStatus(err)
	}
	text := fmt.Sprintf("Completed %q", task.Title)
	if minutes > 0 {
		text += fmt.Sprintf(" (+%s)", formatMinutes(minutes))
	}
	return d, tea.Batch(
		func() tea.Msg { return dataChangedMsg{} },
		func() tea.Msg { return statusMsg{text: text} },
	)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderSummaryPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderTaskPicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	var timeDisplay string
	var indicator string

	if d.timer.running() {
		elapsed := d.timer.currentElapsed()
		timeStr := formatDuration(elapsed)

		if d.timer.paused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			if d.timer.isIdle {
				indicator = warningStyle.Render("⏸  IDLE")
			} else {
				indicator = warningStyle.Render("⏸  PAUSED")
			}
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  STUDYING")
		}

		task := d.timer.task
		taskLine := highlightStyle.Render(task.Title)
		if subject := task.SubjectName(); subject != "" {
			taskLine = subjectDot(subject) + " " + taskLine + mutedStyle.Render(" / "+subject)
		}

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			taskLine,
			mutedStyle.Render("x: stop  c: stop and complete  space: pause"),
		)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay = timerStyle.Width(w - 6).Render("00:00:00")
	indicator = mutedStyle.Render("■  STOPPED")
	hint := mutedStyle.Render("Press s to study a task")

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		hint,
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	sum := d.summary

	streak := streakStyle.Render(fmt.Sprintf("%d day streak", d.streak.CurrentStreak))
	if d.streak.CurrentStreak == 0 {
		streak = mutedStyle.Render("No streak yet")
	} else if d.streak.Broken(d.store.Now(), d.store.Location()) {
		streak = warningStyle.Render(fmt.Sprintf("%d day streak broken, study today to restart", d.streak.CurrentStreak))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Today"), "  ",
		highlightStyle.Render(formatMinutes(sum.TodayStudyTime)), "  ",
		streak,
	)

	stat := func(label, value string) string {
		return mutedStyle.Render(label+" ") + normalItemStyle.Render(value)
	}
	col := lipgloss.NewStyle().Width(34)
	pair := func(left, right string) string {
		return "  " + col.Render(left) + right
	}
	rows := []string{
		header,
		"",
		pair(stat("Tasks done today", fmt.Sprint(sum.TasksCompletedToday)),
			stat("This week", fmt.Sprintf("%s, %d tasks", formatMinutes(sum.WeekStudyTime), sum.TasksCompletedWeek))),
		pair(stat("Completion", fmt.Sprintf("%d%%", sum.CompletionRate)),
			stat("Focus efficiency", fmt.Sprintf("%d%%", sum.FocusEfficiency))),
		pair(stat("Best streak", fmt.Sprintf("%d days", d.streak.LongestStreak)),
			stat("All time", formatMinutes(sum.TotalStudyTime))),
	}

	if len(sum.SubjectDistribution) > 0 {
		var subjects []string
		for _, sm := range sum.SubjectDistribution {
			subjects = append(subjects, fmt.Sprintf("%s %s %s", subjectDot(sm.Subject), sm.Subject, formatMinutes(sm.Minutes)))
		}
		rows = append(rows, "", "  "+strings.Join(subjects, "   "))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recently Completed")
	if len(d.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing completed yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for _, t := range d.recent {
		when := "--:--"
		if t.CompletedAt != nil {
			when = t.CompletedAt.In(d.store.Location()).Format("Jan 02 15:04")
		}
		spent := ""
		if t.ActualDuration != nil {
			spent = formatMinutes(*t.ActualDuration)
		}
		row := fmt.Sprintf("  %s %s  %s %s %s",
			statusIcon(t.Status), mutedStyle.Render(when), subjectDot(t.SubjectName()),
			lipgloss.NewStyle().Width(30).Render(truncate(t.Title, 28)), spent)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderTaskPicker(w int) string {
	title := titleStyle.Render("Select Task")

	var rows []string
	rows = append(rows, title)
	for i, t := range d.openTasks {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s", style.Render(cursor), priorityBadge(t.Priority), subjectDot(t.SubjectName()), style.Render(t.Title)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: start  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

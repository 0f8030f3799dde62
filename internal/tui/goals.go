package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

// progressStep is how far left/right moves a goal's progress.
const progressStep = 10

type goalsModel struct {
	store  *store.Store
	width  int
	height int

	goals  []study.Goal
	cursor int

	formActive bool
	form       *huh.Form

	formTitle       *string
	formDescription *string
	formType        *study.GoalType
	formTarget      *string
}

func newGoalsModel(s *store.Store) goalsModel {
	title, desc, target := "", "", ""
	goalType := study.GoalWeekly
	return goalsModel{
		store:           s,
		formTitle:       &title,
		formDescription: &desc,
		formType:        &goalType,
		formTarget:      &target,
	}
}

func (g *goalsModel) setSize(w, h int) {
	g.width = w
	g.height = h
}

type goalsDataMsg struct {
	goals []study.Goal
	err   error
}

func (g goalsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		goals, err := g.store.ListGoals(context.Background(), "")
		return goalsDataMsg{goals: goals, err: err}
	}
}

func (g goalsModel) update(msg tea.Msg) (goalsModel, tea.Cmd) {
	if g.formActive && g.form != nil {
		return g.updateForm(msg)
	}

	switch msg := msg.(type) {
	case goalsDataMsg:
		if msg.err != nil {
			return g, errStatus(msg.err)
		}
		g.goals = msg.goals
		if g.cursor >= len(g.goals) {
			g.cursor = max(0, len(g.goals)-1)
		}
		return g, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if g.cursor > 0 {
				g.cursor--
			}
		case key.Matches(msg, keys.Down):
			if g.cursor < len(g.goals)-1 {
				g.cursor++
			}
		case key.Matches(msg, keys.New):
			return g.showForm()
		case key.Matches(msg, keys.Left):
			return g.adjustProgress(-progressStep)
		case key.Matches(msg, keys.Right):
			return g.adjustProgress(progressStep)
		case key.Matches(msg, keys.Complete):
			return g.setStatus(study.GoalCompleted)
		case key.Matches(msg, keys.Stop):
			return g.setStatus(study.GoalCancelled)
		case key.Matches(msg, keys.Delete):
			if goal, ok := g.selected(); ok {
				if err := g.store.DeleteGoal(context.Background(), goal.ID); err != nil {
					return g, errStatus(err)
				}
				return g, g.refresh()
			}
		}
	}
	return g, nil
}

func (g goalsModel) selected() (study.Goal, bool) {
	if g.cursor >= len(g.goals) {
		return study.Goal{}, false
	}
	return g.goals[g.cursor], true
}

// adjustProgress nudges an active goal's progress. Reaching 100 leaves the
// goal active until it is completed explicitly.
func (g goalsModel) adjustProgress(delta int) (goalsModel, tea.Cmd) {
	goal, ok := g.selected()
	if !ok || goal.Status != study.GoalActive {
		return g, nil
	}
	progress := min(max(goal.Progress+delta, 0), 100)
	if progress == goal.Progress {
		return g, nil
	}
	if _, err := g.store.UpdateGoal(context.Background(), goal.ID, store.GoalPatch{Progress: &progress}); err != nil {
		return g, errStatus(err)
	}
	return g, g.refresh()
}

func (g goalsModel) setStatus(status study.GoalStatus) (goalsModel, tea.Cmd) {
	goal, ok := g.selected()
	if !ok {
		return g, nil
	}
	// Toggling a finished goal reactivates it.
	if goal.Status == status {
		status = study.GoalActive
	}
	if _, err := g.store.UpdateGoal(context.Background(), goal.ID, store.GoalPatch{Status: &status}); err != nil {
		return g, errStatus(err)
	}
	return g, g.refresh()
}

func (g goalsModel) showForm() (goalsModel, tea.Cmd) {
	*g.formTitle = ""
	*g.formDescription = ""
	*g.formType = study.GoalWeekly
	*g.formTarget = study.DateKey(g.store.Now().AddDate(0, 0, 7), g.store.Location())

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Goal").Value(g.formTitle).Validate(required),
			huh.NewSelect[study.GoalType]().Title("Type").
				Options(
					huh.NewOption("Daily", study.GoalDaily),
					huh.NewOption("Weekly", study.GoalWeekly),
					huh.NewOption("Monthly", study.GoalMonthly),
				).Value(g.formType),
			huh.NewInput().Title("Target date (YYYY-MM-DD)").Value(g.formTarget).Validate(g.validDate),
			huh.NewInput().Title("Description").Value(g.formDescription),
		),
	).WithShowHelp(true).WithShowErrors(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g goalsModel) validDate(s string) error {
	if _, err := study.ParseDateKey(strings.TrimSpace(s), g.store.Location()); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func (g goalsModel) updateForm(msg tea.Msg) (goalsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			g.formActive = false
			g.form = nil
			return g, nil
		}
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.formActive = false
		target, err := study.ParseDateKey(strings.TrimSpace(*g.formTarget), g.store.Location())
		if err != nil {
			return g, errStatus(err)
		}
		_, err = g.store.CreateGoal(context.Background(), store.GoalInput{
			Title:       *g.formTitle,
			Description: optionalString(*g.formDescription),
			Type:        *g.formType,
			TargetDate:  target,
		})
		if err != nil {
			return g, errStatus(err)
		}
		return g, g.refresh()
	}

	return g, cmd
}

func (g goalsModel) view() string {
	w := g.width - 4

	if g.formActive && g.form != nil {
		title := titleStyle.Render("New Goal")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", g.form.View()),
		)
	}

	title := titleStyle.Render("Goals")
	if len(g.goals) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No goals yet. Press n to set one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	barWidth := max(10, min(30, w-60))
	today := study.StartOfDay(g.store.Now(), g.store.Location())

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, goal := range g.goals {
		cursor := "  "
		style := normalItemStyle
		if i == g.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		if goal.Status != study.GoalActive && i != g.cursor {
			style = doneItemStyle
		}

		due := goal.TargetDate.In(g.store.Location()).Format("Jan 02")
		dueStyle := mutedStyle
		if goal.Status == study.GoalActive && goal.TargetDate.Before(today) {
			dueStyle = errorStyle
		}

		rows = append(rows, fmt.Sprintf("%s%s %s %s %3d%%  %s  %s",
			style.Render(cursor),
			style.Render(fmt.Sprintf("%-32s", truncate(goal.Title, 32))),
			mutedStyle.Render(fmt.Sprintf("%-8s", goal.Type)),
			progressBar(goal.Progress, barWidth),
			goal.Progress,
			dueStyle.Render(due),
			goalStatusLabel(goal.Status),
		))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  ←/→: progress -/+10  c: complete  x: cancel  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func goalStatusLabel(s study.GoalStatus) string {
	switch s {
	case study.GoalCompleted:
		return successStyle.Render("done")
	case study.GoalCancelled:
		return mutedStyle.Render("cancelled")
	}
	return ""
}

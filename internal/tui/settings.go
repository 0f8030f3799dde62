package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   *study.Settings
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	focus         *string
	breakMins     *string
	longBreak     *string
	count         *string
	theme         *string
	notifications *bool
	sound         *bool
}

func newSettingsModel(s *store.Store) settingsModel {
	focus, brk, long, count, theme := "", "", "", "", ""
	notifications, sound := false, false
	return settingsModel{
		store:         s,
		focus:         &focus,
		breakMins:     &brk,
		longBreak:     &long,
		count:         &count,
		theme:         &theme,
		notifications: &notifications,
		sound:         &sound,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings *study.Settings
	err      error
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetSettings(context.Background())
		return settingsDataMsg{settings: settings, err: err}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		if msg.err != nil {
			return s, errStatus(msg.err)
		}
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			if s.settings != nil {
				return s.showForm()
			}
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.settings
	*s.focus = strconv.Itoa(cur.PomodoroFocusDuration)
	*s.breakMins = strconv.Itoa(cur.PomodoroBreakDuration)
	*s.longBreak = strconv.Itoa(cur.PomodoroLongBreakDuration)
	*s.count = strconv.Itoa(cur.PomodoroCount)
	*s.theme = cur.Theme
	*s.notifications = cur.NotificationsEnabled
	*s.sound = cur.SoundEnabled

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Focus (min)").Value(s.focus).Validate(positiveInt),
			huh.NewInput().Title("Short break (min)").Value(s.breakMins).Validate(positiveInt),
			huh.NewInput().Title("Long break (min)").Value(s.longBreak).Validate(positiveInt),
			huh.NewInput().Title("Focus sessions before long break").Value(s.count).Validate(positiveInt),
		).Title("Pomodoro"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).Value(s.theme),
			huh.NewConfirm().Title("Notifications").Value(s.notifications),
			huh.NewConfirm().Title("Sound").Value(s.sound),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, errStatus(err)
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg {
			return statusMsg{text: "Settings saved"}
		})
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	atoi := func(v string) *int {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &n
	}
	theme, notifications, sound := *s.theme, *s.notifications, *s.sound
	_, err := s.store.UpdateSettings(context.Background(), store.SettingsPatch{
		PomodoroFocusDuration:     atoi(*s.focus),
		PomodoroBreakDuration:     atoi(*s.breakMins),
		PomodoroLongBreakDuration: atoi(*s.longBreak),
		PomodoroCount:             atoi(*s.count),
		Theme:                     &theme,
		NotificationsEnabled:      &notifications,
		SoundEnabled:              &sound,
	})
	return err
}

func positiveInt(v string) error {
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err != nil || n <= 0 {
		return fmt.Errorf("enter a whole number above 0")
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	if s.settings == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("Loading...")))
	}

	cur := s.settings
	label := lipgloss.NewStyle().Width(34)
	row := func(k, v string) string {
		return fmt.Sprintf("  %s %s", label.Render(k), highlightStyle.Render(v))
	}

	lastStudy := "never"
	if cur.LastStudyDate != nil {
		lastStudy = study.DateKey(*cur.LastStudyDate, s.store.Location())
	}

	rows := []string{
		title,
		"",
		row("Focus", fmt.Sprintf("%d min", cur.PomodoroFocusDuration)),
		row("Short break", fmt.Sprintf("%d min", cur.PomodoroBreakDuration)),
		row("Long break", fmt.Sprintf("%d min", cur.PomodoroLongBreakDuration)),
		row("Focus sessions before long break", strconv.Itoa(cur.PomodoroCount)),
		row("Theme", cur.Theme),
		row("Notifications", onOff(cur.NotificationsEnabled)),
		row("Sound", onOff(cur.SoundEnabled)),
		"",
		titleStyle.Render("Streak"),
		"",
		fmt.Sprintf("  %s %s", label.Render("Current"), streakStyle.Render(fmt.Sprintf("%d days", cur.CurrentStreak))),
		row("Longest", fmt.Sprintf("%d days", cur.LongestStreak)),
		row("Last study day", lastStudy),
		"",
		mutedStyle.Render("Press enter to edit settings"),
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

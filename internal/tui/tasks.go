package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

// taskFilters are cycled with left/right in the task list.
var taskFilters = []study.TaskStatus{"", study.StatusPending, study.StatusInProgress, study.StatusCompleted}

type tasksModel struct {
	store  *store.Store
	width  int
	height int

	tasks           []study.TaskWithSubtasks
	cursor          int
	subCursor       int
	filter          int
	viewingSubtasks bool

	formActive bool
	form       *huh.Form
	formType   string // "task", "subtask", "edit_task"

	// Form field pointers (survive value copies)
	formTitle       *string
	formDescription *string
	formSubject     *string
	formPriority    *study.Priority
	formEstimate    *string
	formDeadline    *string

	editingID string
}

func newTasksModel(s *store.Store) tasksModel {
	title, desc, subject, estimate, deadline := "", "", "", "", ""
	priority := study.PriorityImportant
	return tasksModel{
		store:           s,
		formTitle:       &title,
		formDescription: &desc,
		formSubject:     &subject,
		formPriority:    &priority,
		formEstimate:    &estimate,
		formDeadline:    &deadline,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type tasksDataMsg struct {
	tasks []study.TaskWithSubtasks
	err   error
}

func (m tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.store.ListTasksWithSubtasks(context.Background())
		return tasksDataMsg{tasks: tasks, err: err}
	}
}

// visible applies the status filter to top-level tasks.
func (m tasksModel) visible() []study.TaskWithSubtasks {
	status := taskFilters[m.filter]
	if status == "" {
		return m.tasks
	}
	var out []study.TaskWithSubtasks
	for _, t := range m.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func (m tasksModel) selected() (study.TaskWithSubtasks, bool) {
	tasks := m.visible()
	if m.cursor >= len(tasks) {
		return study.TaskWithSubtasks{}, false
	}
	return tasks[m.cursor], true
}

func (m tasksModel) selectedSubtask() (study.Task, bool) {
	parent, ok := m.selected()
	if !ok || m.subCursor >= len(parent.Subtasks) {
		return study.Task{}, false
	}
	return parent.Subtasks[m.subCursor], true
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		if msg.err != nil {
			return m, errStatus(msg.err)
		}
		m.tasks = msg.tasks
		m.clampCursors()
		return m, nil

	case tea.KeyMsg:
		if m.viewingSubtasks {
			return m.updateSubtaskView(msg)
		}
		return m.updateTaskList(msg)
	}
	return m, nil
}

func (m *tasksModel) clampCursors() {
	if n := len(m.visible()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	parent, ok := m.selected()
	if !ok {
		m.viewingSubtasks = false
		m.subCursor = 0
		return
	}
	if m.subCursor >= len(parent.Subtasks) {
		m.subCursor = max(0, len(parent.Subtasks)-1)
	}
}

func (m tasksModel) updateTaskList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Left):
		m.filter = (m.filter + len(taskFilters) - 1) % len(taskFilters)
		m.cursor = 0
	case key.Matches(msg, keys.Right):
		m.filter = (m.filter + 1) % len(taskFilters)
		m.cursor = 0
	case key.Matches(msg, keys.Enter):
		if _, ok := m.selected(); ok {
			m.viewingSubtasks = true
			m.subCursor = 0
		}
	case key.Matches(msg, keys.New):
		return m.showTaskForm("task", nil)
	case key.Matches(msg, keys.Edit):
		if t, ok := m.selected(); ok {
			return m.showTaskForm("edit_task", &t.Task)
		}
	case key.Matches(msg, keys.Start):
		if t, ok := m.selected(); ok {
			return m.setStatus(t.Task, study.StatusInProgress)
		}
	case key.Matches(msg, keys.Complete):
		if t, ok := m.selected(); ok {
			return m.toggleComplete(t.Task)
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := m.selected(); ok {
			return m.deleteTask(t.Task)
		}
	}
	return m, nil
}

func (m tasksModel) updateSubtaskView(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	parent, _ := m.selected()
	switch {
	case key.Matches(msg, keys.Back):
		m.viewingSubtasks = false
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.subCursor > 0 {
			m.subCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.subCursor < len(parent.Subtasks)-1 {
			m.subCursor++
		}
	case key.Matches(msg, keys.New):
		return m.showTaskForm("subtask", nil)
	case key.Matches(msg, keys.Edit):
		if t, ok := m.selectedSubtask(); ok {
			return m.showTaskForm("edit_task", &t)
		}
	case key.Matches(msg, keys.Start):
		if t, ok := m.selectedSubtask(); ok {
			return m.setStatus(t, study.StatusInProgress)
		}
	case key.Matches(msg, keys.Complete):
		if t, ok := m.selectedSubtask(); ok {
			return m.toggleComplete(t)
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := m.selectedSubtask(); ok {
			return m.deleteTask(t)
		}
	}
	return m, nil
}

func (m tasksModel) setStatus(t study.Task, status study.TaskStatus) (tasksModel, tea.Cmd) {
	if t.Status == status {
		return m, nil
	}
	if _, err := m.store.UpdateTask(context.Background(), t.ID, store.TaskPatch{Status: &status}); err != nil {
		return m, errStatus(err)
	}
	return m, tea.Batch(m.refresh(), changed)
}

// toggleComplete completes an open task or reopens a completed one.
func (m tasksModel) toggleComplete(t study.Task) (tasksModel, tea.Cmd) {
	if t.Completed() {
		return m.setStatus(t, study.StatusPending)
	}
	m, cmd := m.setStatus(t, study.StatusCompleted)
	return m, tea.Batch(cmd, func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Completed %q", t.Title)}
	})
}

func (m tasksModel) deleteTask(t study.Task) (tasksModel, tea.Cmd) {
	if err := m.store.DeleteTask(context.Background(), t.ID); err != nil {
		return m, errStatus(err)
	}
	return m, tea.Batch(m.refresh(), changed)
}

func changed() tea.Msg { return dataChangedMsg{} }

func (m tasksModel) showTaskForm(formType string, t *study.Task) (tasksModel, tea.Cmd) {
	*m.formTitle, *m.formDescription, *m.formSubject = "", "", ""
	*m.formPriority = study.PriorityImportant
	*m.formEstimate, *m.formDeadline = "", ""
	m.editingID = ""

	if formType == "subtask" {
		if parent, ok := m.selected(); ok && parent.Subject != nil {
			*m.formSubject = *parent.Subject
		}
	}
	if t != nil {
		m.editingID = t.ID
		*m.formTitle = t.Title
		*m.formDescription = deref(t.Description)
		*m.formSubject = t.SubjectName()
		*m.formPriority = t.Priority
		if t.EstimatedDuration != nil {
			*m.formEstimate = strconv.Itoa(*t.EstimatedDuration)
		}
		if t.Deadline != nil {
			*m.formDeadline = study.DateKey(*t.Deadline, m.store.Location())
		}
	}
	m.formType = formType

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle).Validate(required),
			huh.NewInput().Title("Subject").Value(m.formSubject),
			huh.NewSelect[study.Priority]().Title("Priority").
				Options(
					huh.NewOption("Critical", study.PriorityCritical),
					huh.NewOption("Important", study.PriorityImportant),
					huh.NewOption("Optional", study.PriorityOptional),
				).Value(m.formPriority),
		),
		huh.NewGroup(
			huh.NewInput().Title("Estimate (min)").Value(m.formEstimate).Validate(optionalMinutes),
			huh.NewInput().Title("Deadline (YYYY-MM-DD)").Value(m.formDeadline).Validate(m.optionalDate),
			huh.NewText().Title("Description").Value(m.formDescription),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		if err := m.saveForm(); err != nil {
			return m, errStatus(err)
		}
		return m, tea.Batch(m.refresh(), changed)
	}

	return m, cmd
}

func (m tasksModel) saveForm() error {
	ctx := context.Background()
	estimate := parseMinutes(*m.formEstimate)
	deadline, _ := m.parseDate(*m.formDeadline)

	if m.formType == "edit_task" {
		title := strings.TrimSpace(*m.formTitle)
		priority := *m.formPriority
		patch := store.TaskPatch{
			Title:             &title,
			Priority:          &priority,
			Description:       optionalField(*m.formDescription),
			Subject:           optionalField(*m.formSubject),
			EstimatedDuration: store.Null[int](),
			Deadline:          store.Null[time.Time](),
		}
		if estimate != nil {
			patch.EstimatedDuration = store.Set(*estimate)
		}
		if deadline != nil {
			patch.Deadline = store.Set(*deadline)
		}
		_, err := m.store.UpdateTask(ctx, m.editingID, patch)
		return err
	}

	in := store.TaskInput{
		Title:             *m.formTitle,
		Description:       optionalString(*m.formDescription),
		Subject:           optionalString(*m.formSubject),
		Priority:          *m.formPriority,
		EstimatedDuration: estimate,
		Deadline:          deadline,
	}
	if m.formType == "subtask" {
		parent, ok := m.selected()
		if !ok {
			return fmt.Errorf("no parent task selected")
		}
		in.ParentTaskID = &parent.ID
	}
	_, err := m.store.CreateTask(ctx, in)
	return err
}

func (m tasksModel) view() string {
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		switch m.formType {
		case "edit_task":
			title = titleStyle.Render("Edit Task")
		case "subtask":
			parent, _ := m.selected()
			title = titleStyle.Render("New Subtask of " + parent.Title)
		}
		formView := m.form.View()
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
		return panelStyle.Width(m.width - 4).Render(content)
	}

	if m.viewingSubtasks {
		return m.renderSubtaskView()
	}
	return m.renderTaskList()
}

func (m tasksModel) renderFilterTabs() string {
	var tabs []string
	for i, f := range taskFilters {
		name := "All"
		if f != "" {
			name = strings.ReplaceAll(string(f), "_", " ")
		}
		if i == m.filter {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (m tasksModel) renderTaskList() string {
	w := m.width - 4
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Tasks"), "  ", m.renderFilterTabs())
	tasks := m.visible()

	if len(tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			mutedStyle.Render("No tasks here. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("      %-34s %-12s %-10s %-9s %s", "Title", "Subject", "Deadline", "Time", "Subtasks")))

	for i, t := range tasks {
		rows = append(rows, m.renderTaskRow(t.Task, i == m.cursor, subtaskProgress(t.Subtasks)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  s: start  c: complete  d: delete  enter: subtasks  ←/→: filter"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) renderTaskRow(t study.Task, selected bool, extra string) string {
	cursor := "  "
	style := normalItemStyle
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}
	if t.Completed() && !selected {
		style = doneItemStyle
	}

	deadline := "-"
	if t.Deadline != nil {
		deadline = t.Deadline.In(m.store.Location()).Format("Jan 02")
		if !t.Completed() && t.Deadline.Before(m.store.Now()) {
			deadline = errorStyle.Render(fmt.Sprintf("%-10s", deadline))
		}
	}
	spent := "-"
	if t.ActualDuration != nil {
		spent = formatMinutes(*t.ActualDuration)
	}
	if t.EstimatedDuration != nil {
		spent += "/" + formatMinutes(*t.EstimatedDuration)
	}

	subject := t.SubjectName()
	if subject == "" {
		subject = "-"
	}
	return fmt.Sprintf("%s%s%s %s %-12s %-10s %-9s %s",
		style.Render(cursor), priorityBadge(t.Priority), statusIcon(t.Status),
		style.Render(fmt.Sprintf("%-34s", truncate(t.Title, 34))),
		truncate(subject, 12), deadline, spent, mutedStyle.Render(extra))
}

func subtaskProgress(subtasks []study.Task) string {
	if len(subtasks) == 0 {
		return ""
	}
	done := 0
	for _, s := range subtasks {
		if s.Completed() {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(subtasks))
}

func (m tasksModel) renderSubtaskView() string {
	w := m.width - 4
	parent, _ := m.selected()
	title := titleStyle.Render(fmt.Sprintf("%s %s / Subtasks", subjectDot(parent.SubjectName()), parent.Title))

	var rows []string
	rows = append(rows, title)
	if parent.Description != nil {
		rows = append(rows, mutedStyle.Render(*parent.Description))
	}
	rows = append(rows, "")

	if len(parent.Subtasks) == 0 {
		rows = append(rows, mutedStyle.Render("No subtasks. Press n to add one."))
	}
	for i, t := range parent.Subtasks {
		rows = append(rows, m.renderTaskRow(t, i == m.subCursor, ""))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new subtask  e: edit  s: start  c: complete  d: delete  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// --- form helpers ---

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func optionalMinutes(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err != nil || n < 0 {
		return fmt.Errorf("enter whole minutes")
	}
	return nil
}

func (m tasksModel) optionalDate(s string) error {
	_, err := m.parseDate(s)
	return err
}

func (m tasksModel) parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := study.ParseDateKey(s, m.store.Location())
	if err != nil {
		return nil, fmt.Errorf("use YYYY-MM-DD")
	}
	return &t, nil
}

func parseMinutes(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// optionalField sets s, or clears the column when s is blank.
func optionalField(s string) store.Field[string] {
	if v := optionalString(s); v != nil {
		return store.Set(*v)
	}
	return store.Null[string]()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

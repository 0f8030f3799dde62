package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

func newTaskCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage study tasks",
	}
	cmd.AddCommand(
		newTaskAddCommand(a),
		newTaskListCommand(a),
		newTaskStatusCommand(a, "start", "Mark a task as in progress", study.StatusInProgress),
		newTaskDoneCommand(a),
		newTaskRemoveCommand(a),
	)
	return cmd
}

func newTaskAddCommand(a *app) *cobra.Command {
	var (
		in       store.TaskInput
		subject  string
		desc     string
		priority string
		parent   string
		deadline string
		estimate int
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			in.Title = strings.Join(args, " ")
			in.Priority = study.Priority(priority)
			in.Subject = optional(subject)
			in.Description = optional(desc)
			if estimate > 0 {
				in.EstimatedDuration = &estimate
			}
			if deadline != "" {
				d, err := study.ParseDateKey(deadline, s.Location())
				if err != nil {
					return fmt.Errorf("--deadline: want YYYY-MM-DD, got %q", deadline)
				}
				in.Deadline = &d
			}
			if parent != "" {
				p, err := resolveTask(ctx, s, parent)
				if err != nil {
					return err
				}
				in.ParentTaskID = &p.ID
			}

			t, err := s.CreateTask(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s  %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&subject, "subject", "s", "", "subject the task belongs to")
	f.StringVarP(&desc, "description", "d", "", "longer description")
	f.StringVarP(&priority, "priority", "p", string(study.PriorityImportant), "critical, important or optional")
	f.StringVar(&parent, "parent", "", "parent task id or id prefix")
	f.StringVar(&deadline, "deadline", "", "due date, YYYY-MM-DD")
	f.IntVarP(&estimate, "estimate", "e", 0, "estimated minutes")
	return cmd
}

func newTaskListCommand(a *app) *cobra.Command {
	var (
		status  string
		subject string
		all     bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := study.TaskStatus(status)
			if st != "" && !st.Valid() {
				return fmt.Errorf("--status must be one of pending, in_progress, completed")
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			tasks, err := s.ListTasks(cmd.Context(), store.TaskFilter{
				Status:       st,
				Subject:      subject,
				TopLevelOnly: !all,
			})
			if err != nil {
				return err
			}
			if asJSON {
				if tasks == nil {
					tasks = []study.Task{}
				}
				return printJSON(cmd.OutOrStdout(), tasks)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTasks(tasks, s.Location()))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&status, "status", "", "only tasks with this status")
	f.StringVarP(&subject, "subject", "s", "", "only tasks for this subject")
	f.BoolVarP(&all, "all", "a", false, "include subtasks")
	f.BoolVar(&asJSON, "json", false, "print tasks as JSON")
	return cmd
}

func renderTasks(tasks []study.Task, loc *time.Location) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		spent := "-"
		if t.ActualDuration != nil {
			spent = formatMinutes(*t.ActualDuration)
		}
		title := t.Title
		if t.ParentTaskID != nil {
			title = "  ↳ " + title
		}
		rows = append(rows, []string{
			shortID(t.ID), title, string(t.Status), string(t.Priority),
			orDash(t.Subject), formatDate(t.Deadline, loc), spent,
		})
	}
	return renderTable([]string{"ID", "Title", "Status", "Priority", "Subject", "Deadline", "Spent"}, rows)
}

func newTaskStatusCommand(a *app, use, short string, status study.TaskStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			t, err := setTaskStatus(cmd.Context(), s, args[0], status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", t.Status, t.Title)
			return nil
		},
	}
}

func newTaskDoneCommand(a *app) *cobra.Command {
	var minutes int

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Complete a task, optionally logging time spent on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			t, err := resolveTask(ctx, s, args[0])
			if err != nil {
				return err
			}
			if minutes > 0 {
				if _, err := s.AddTaskDuration(ctx, t.ID, minutes); err != nil {
					return err
				}
			}
			t, err = setTaskStatus(ctx, s, t.ID, study.StatusCompleted)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed  %s\n", t.Title)
			return nil
		},
	}
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "minutes to add to the time spent")
	return cmd
}

func newTaskRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task; its subtasks become top-level",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			t, err := resolveTask(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteTask(cmd.Context(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted  %s\n", t.Title)
			return nil
		},
	}
}

func setTaskStatus(ctx context.Context, s *store.Store, ref string, status study.TaskStatus) (*study.Task, error) {
	t, err := resolveTask(ctx, s, ref)
	if err != nil {
		return nil, err
	}
	return s.UpdateTask(ctx, t.ID, store.TaskPatch{Status: &status})
}

// resolveTask finds a task by full id or by a unique id prefix.
func resolveTask(ctx context.Context, s *store.Store, ref string) (*study.Task, error) {
	if ref = strings.TrimSpace(ref); ref == "" {
		return nil, errors.New("task id is required")
	}
	t, err := s.GetTask(ctx, ref)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	tasks, err := s.ListTasks(ctx, store.TaskFilter{})
	if err != nil {
		return nil, err
	}
	var match *study.Task
	for i := range tasks {
		if !strings.HasPrefix(tasks[i].ID, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("task id %q is ambiguous", ref)
		}
		match = &tasks[i]
	}
	if match == nil {
		return nil, fmt.Errorf("task %q: %w", ref, store.ErrNotFound)
	}
	return match, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

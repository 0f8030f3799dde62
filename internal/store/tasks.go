package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/studyr/internal/study"
)

const taskColumns = `id, title, description, status, priority, subject, deadline, estimated_duration,
	actual_duration, parent_task_id, resources, is_recurring, recurring_schedule, completed_at, created_at`

func scanTask(r rowScanner) (*study.Task, error) {
	t := &study.Task{}
	var description, subject, deadline, parentID, schedule, completedAt sql.NullString
	var estimated, actual sql.NullInt64
	var resources, createdAt string
	var recurring int

	err := r.Scan(&t.ID, &t.Title, &description, &t.Status, &t.Priority, &subject, &deadline, &estimated,
		&actual, &parentID, &resources, &recurring, &schedule, &completedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	t.Description = stringPtr(description)
	t.Subject = stringPtr(subject)
	t.Deadline = timePtr(deadline)
	t.EstimatedDuration = intPtr(estimated)
	t.ActualDuration = intPtr(actual)
	t.ParentTaskID = stringPtr(parentID)
	t.Resources = decodeList(resources)
	t.IsRecurring = recurring == 1
	t.RecurringSchedule = stringPtr(schedule)
	t.CompletedAt = timePtr(completedAt)
	t.CreatedAt = parseTime(createdAt)
	return t, nil
}

// CreateTask inserts a task. A task created as completed counts as a
// completion: it gets a completedAt stamp and advances the streak for that
// day.
func (s *Store) CreateTask(ctx context.Context, in TaskInput) (*study.Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	now := s.stamp()
	t := &study.Task{
		ID:                newID(),
		Title:             in.Title,
		Description:       in.Description,
		Status:            in.Status,
		Priority:          in.Priority,
		Subject:           in.Subject,
		Deadline:          in.Deadline,
		EstimatedDuration: in.EstimatedDuration,
		ActualDuration:    in.ActualDuration,
		ParentTaskID:      in.ParentTaskID,
		Resources:         in.Resources,
		IsRecurring:       in.IsRecurring,
		RecurringSchedule: in.RecurringSchedule,
		CreatedAt:         now,
	}
	completing := t.Completed()
	if completing {
		at := now
		if in.CompletedAt != nil {
			at = in.CompletedAt.UTC()
		}
		t.CompletedAt = &at
	}

	s.streakMu.Lock()
	defer s.streakMu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if t.ParentTaskID != nil {
			if err := checkTaskRef(ctx, tx, "task", "parentTaskId", *t.ParentTaskID); err != nil {
				return err
			}
		}
		if err := insertTask(ctx, tx, t); err != nil {
			return err
		}
		if completing {
			return s.recordActivity(ctx, tx, *t.CompletedAt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func insertTask(ctx context.Context, q querier, t *study.Task) error {
	resources, err := encodeList(t.Resources)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, nullString(t.Description), t.Status, t.Priority, nullString(t.Subject),
		nullTime(t.Deadline), nullInt(t.EstimatedDuration), nullInt(t.ActualDuration),
		nullString(t.ParentTaskID), resources, boolInt(t.IsRecurring), nullString(t.RecurringSchedule),
		nullTime(t.CompletedAt), formatTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*study.Task, error) {
	return getTask(ctx, s.db, id)
}

func getTask(ctx context.Context, q querier, id string) (*study.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// checkTaskRef rejects a reference to a task that does not exist.
func checkTaskRef(ctx context.Context, q querier, kind, field, id string) error {
	_, err := getTask(ctx, q, id)
	if errors.Is(err, ErrNotFound) {
		v := &study.ValidationError{Kind: kind}
		v.Add(field, "references unknown task %s", id)
		return v
	}
	return err
}

func (s *Store) ListTasks(ctx context.Context, f TaskFilter) ([]study.Task, error) {
	return listTasks(ctx, s.db, f)
}

func listTasks(ctx context.Context, q querier, f TaskFilter) ([]study.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Subject != "" {
		query += ` AND subject = ?`
		args = append(args, f.Subject)
	}
	if f.ParentID != "" {
		query += ` AND parent_task_id = ?`
		args = append(args, f.ParentID)
	}
	if f.TopLevelOnly {
		query += ` AND parent_task_id IS NULL`
	}
	query += ` ORDER BY created_at, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []study.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListTasksWithSubtasks returns top-level tasks with their direct subtasks.
func (s *Store) ListTasksWithSubtasks(ctx context.Context) ([]study.TaskWithSubtasks, error) {
	all, err := s.ListTasks(ctx, TaskFilter{})
	if err != nil {
		return nil, err
	}

	children := make(map[string][]study.Task)
	for _, t := range all {
		if t.ParentTaskID != nil {
			children[*t.ParentTaskID] = append(children[*t.ParentTaskID], t)
		}
	}

	var out []study.TaskWithSubtasks
	for _, t := range all {
		if t.ParentTaskID != nil {
			continue
		}
		out = append(out, study.TaskWithSubtasks{Task: t, Subtasks: children[t.ID]})
	}
	return out, nil
}

// UpdateTask applies a partial update. Moving into completed stamps
// completedAt and advances the streak in the same transaction; moving out of
// completed clears completedAt.
func (s *Store) UpdateTask(ctx context.Context, id string, p TaskPatch) (*study.Task, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	s.streakMu.Lock()
	defer s.streakMu.Unlock()

	var updated *study.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		cur, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}

		next := *cur
		p.apply(&next)
		if next.ParentTaskID != nil {
			if *next.ParentTaskID == next.ID {
				v := &study.ValidationError{Kind: "task"}
				v.Add("parentTaskId", "must not reference the task itself")
				return v
			}
			if err := checkTaskRef(ctx, tx, "task", "parentTaskId", *next.ParentTaskID); err != nil {
				return err
			}
		}

		now := s.stamp()
		completing := next.Completed() && !cur.Completed()
		switch {
		case completing:
			next.CompletedAt = &now
		case !next.Completed():
			next.CompletedAt = nil
		}

		if err := updateTask(ctx, tx, &next); err != nil {
			return err
		}
		if completing {
			if err := s.recordActivity(ctx, tx, now); err != nil {
				return err
			}
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (p TaskPatch) apply(t *study.Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Subject.Set {
		t.Subject = p.Subject.Value
	}
	if p.Deadline.Set {
		t.Deadline = p.Deadline.Value
	}
	if p.EstimatedDuration.Set {
		t.EstimatedDuration = p.EstimatedDuration.Value
	}
	if p.ActualDuration.Set {
		t.ActualDuration = p.ActualDuration.Value
	}
	if p.ParentTaskID.Set {
		t.ParentTaskID = p.ParentTaskID.Value
	}
	if p.Resources != nil {
		t.Resources = *p.Resources
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.RecurringSchedule.Set {
		t.RecurringSchedule = p.RecurringSchedule.Value
	}
}

func updateTask(ctx context.Context, q querier, t *study.Task) error {
	resources, err := encodeList(t.Resources)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, subject = ?, deadline = ?,
		 estimated_duration = ?, actual_duration = ?, parent_task_id = ?, resources = ?, is_recurring = ?,
		 recurring_schedule = ?, completed_at = ? WHERE id = ?`,
		t.Title, nullString(t.Description), t.Status, t.Priority, nullString(t.Subject), nullTime(t.Deadline),
		nullInt(t.EstimatedDuration), nullInt(t.ActualDuration), nullString(t.ParentTaskID), resources,
		boolInt(t.IsRecurring), nullString(t.RecurringSchedule), nullTime(t.CompletedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	return nil
}

// AddTaskDuration adds minutes of tracked work to a task's actualDuration.
func (s *Store) AddTaskDuration(ctx context.Context, id string, minutes int) (*study.Task, error) {
	if minutes < 0 {
		v := &study.ValidationError{Kind: "task"}
		v.Add("actualDuration", "must not be negative")
		return nil, v
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET actual_duration = COALESCE(actual_duration, 0) + ? WHERE id = ?`, minutes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("add task duration: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFound("task", id)
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task. Its subtasks become top-level tasks.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("task", id)
	}
	return nil
}

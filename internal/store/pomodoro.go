package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sadopc/studyr/internal/study"
)

const sessionColumns = `id, task_id, focus_duration, break_duration, was_completed, completed_at, created_at`

func scanSession(r rowScanner) (*study.PomodoroSession, error) {
	p := &study.PomodoroSession{}
	var taskID, completedAt sql.NullString
	var createdAt string
	var completed int

	err := r.Scan(&p.ID, &taskID, &p.FocusDuration, &p.BreakDuration, &completed, &completedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	p.TaskID = stringPtr(taskID)
	p.WasCompleted = completed == 1
	p.CompletedAt = timePtr(completedAt)
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

// CreatePomodoroSession records a terminated focus interval. Finished
// sessions are stamped and advance the streak for the day they completed;
// abandoned ones never carry a completedAt.
func (s *Store) CreatePomodoroSession(ctx context.Context, in SessionInput) (*study.PomodoroSession, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.stamp()
	p := &study.PomodoroSession{
		ID:            newID(),
		TaskID:        in.TaskID,
		FocusDuration: in.FocusDuration,
		BreakDuration: in.BreakDuration,
		WasCompleted:  in.WasCompleted,
		CreatedAt:     now,
	}
	if p.WasCompleted {
		at := now
		if in.CompletedAt != nil {
			at = in.CompletedAt.UTC()
		}
		p.CompletedAt = &at
	}

	s.streakMu.Lock()
	defer s.streakMu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if p.TaskID != nil {
			if err := checkTaskRef(ctx, tx, "session", "taskId", *p.TaskID); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO pomodoro_sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, nullString(p.TaskID), p.FocusDuration, p.BreakDuration, boolInt(p.WasCompleted),
			nullTime(p.CompletedAt), formatTime(p.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert pomodoro session: %w", err)
		}
		if p.WasCompleted {
			return s.recordActivity(ctx, tx, *p.CompletedAt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) GetPomodoroSession(ctx context.Context, id string) (*study.PomodoroSession, error) {
	p, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM pomodoro_sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("pomodoro session", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get pomodoro session %s: %w", id, err)
	}
	return p, nil
}

// ListPomodoroSessions returns every session, oldest first.
func (s *Store) ListPomodoroSessions(ctx context.Context) ([]study.PomodoroSession, error) {
	return listSessions(ctx, s.db)
}

func listSessions(ctx context.Context, q querier) ([]study.PomodoroSession, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM pomodoro_sessions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list pomodoro sessions: %w", err)
	}
	defer rows.Close()

	var sessions []study.PomodoroSession
	for rows.Next() {
		p, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *p)
	}
	return sessions, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/studyr/internal/study"
)

const goalColumns = `id, title, description, type, target_date, status, progress, related_task_ids, completed_at, created_at`

func scanGoal(r rowScanner) (*study.Goal, error) {
	g := &study.Goal{}
	var description, completedAt sql.NullString
	var targetDate, related, createdAt string

	err := r.Scan(&g.ID, &g.Title, &description, &g.Type, &targetDate, &g.Status, &g.Progress,
		&related, &completedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	g.Description = stringPtr(description)
	g.TargetDate = parseTime(targetDate)
	g.RelatedTaskIDs = decodeList(related)
	g.CompletedAt = timePtr(completedAt)
	g.CreatedAt = parseTime(createdAt)
	return g, nil
}

func (s *Store) CreateGoal(ctx context.Context, in GoalInput) (*study.Goal, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	now := s.stamp()
	g := &study.Goal{
		ID:             newID(),
		Title:          in.Title,
		Description:    in.Description,
		Type:           in.Type,
		TargetDate:     in.TargetDate.UTC(),
		Status:         in.Status,
		Progress:       in.Progress,
		RelatedTaskIDs: in.RelatedTaskIDs,
		CreatedAt:      now,
	}
	if g.Status == study.GoalCompleted {
		g.CompletedAt = &now
		g.Progress = 100
	}

	related, err := encodeList(g.RelatedTaskIDs)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Title, nullString(g.Description), g.Type, formatTime(g.TargetDate), g.Status, g.Progress,
		related, nullTime(g.CompletedAt), formatTime(g.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	return g, nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (*study.Goal, error) {
	return getGoal(ctx, s.db, id)
}

func getGoal(ctx context.Context, q querier, id string) (*study.Goal, error) {
	g, err := scanGoal(q.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("goal", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get goal %s: %w", id, err)
	}
	return g, nil
}

// ListGoals returns goals ordered by target date. An empty status lists all.
func (s *Store) ListGoals(ctx context.Context, status study.GoalStatus) ([]study.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY target_date, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []study.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// UpdateGoal applies a partial update. Moving into completed stamps
// completedAt and forces progress to 100.
func (s *Store) UpdateGoal(ctx context.Context, id string, p GoalPatch) (*study.Goal, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var updated *study.Goal
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		g, err := getGoal(ctx, tx, id)
		if err != nil {
			return err
		}
		wasCompleted := g.Status == study.GoalCompleted
		p.apply(g)

		switch {
		case g.Status == study.GoalCompleted && !wasCompleted:
			now := s.stamp()
			g.CompletedAt = &now
			g.Progress = 100
		case g.Status != study.GoalCompleted:
			g.CompletedAt = nil
		}

		related, err := encodeList(g.RelatedTaskIDs)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE goals SET title = ?, description = ?, type = ?, target_date = ?, status = ?, progress = ?,
			 related_task_ids = ?, completed_at = ? WHERE id = ?`,
			g.Title, nullString(g.Description), g.Type, formatTime(g.TargetDate), g.Status, g.Progress,
			related, nullTime(g.CompletedAt), g.ID,
		)
		if err != nil {
			return fmt.Errorf("update goal %s: %w", id, err)
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (p GoalPatch) apply(g *study.Goal) {
	if p.Title != nil {
		g.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description.Set {
		g.Description = p.Description.Value
	}
	if p.Type != nil {
		g.Type = *p.Type
	}
	if p.TargetDate != nil {
		g.TargetDate = p.TargetDate.UTC()
	}
	if p.Status != nil {
		g.Status = *p.Status
	}
	if p.Progress != nil {
		g.Progress = *p.Progress
	}
	if p.RelatedTaskIDs != nil {
		g.RelatedTaskIDs = *p.RelatedTaskIDs
	}
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("goal", id)
	}
	return nil
}

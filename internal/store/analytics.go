package store

import (
	"context"
	"database/sql"

	"github.com/sadopc/studyr/internal/study"
)

// Snapshot reads tasks, sessions and the streak in one transaction so the
// engine aggregates a consistent view.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if snap.Tasks, err = listTasks(ctx, tx, TaskFilter{}); err != nil {
			return err
		}
		if snap.Sessions, err = listSessions(ctx, tx); err != nil {
			return err
		}
		snap.Streak, err = readStreak(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) AnalyticsSummary(ctx context.Context) (study.Summary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return study.Summary{}, err
	}
	return study.ComputeSummary(snap.Tasks, snap.Sessions, snap.Streak, s.now(), s.loc), nil
}

func (s *Store) DailyStats(ctx context.Context) ([]study.DailyStats, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return study.ComputeDailyStats(snap.Tasks, snap.Sessions, s.loc), nil
}

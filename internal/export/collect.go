package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

// Collect reads a consistent snapshot from s and builds the export document.
func Collect(ctx context.Context, s *store.Store) (Document, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Document{}, err
	}
	goals, err := s.ListGoals(ctx, "")
	if err != nil {
		return Document{}, err
	}

	now, loc := s.Now(), s.Location()
	return NewDocument(now,
		study.ComputeSummary(snap.Tasks, snap.Sessions, snap.Streak, now, loc),
		snap.Streak,
		study.ComputeDailyStats(snap.Tasks, snap.Sessions, loc),
		snap.Tasks, goals, snap.Sessions,
	), nil
}

// DefaultPath is studyr-export-<date>.<ext> inside dir.
func DefaultPath(dir string, f Format, date string) string {
	return filepath.Join(dir, fmt.Sprintf("studyr-export-%s%s", date, f.Ext()))
}

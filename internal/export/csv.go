package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sadopc/studyr/internal/study"
)

// ToCSV writes one row per study day.
func ToCSV(stats []study.DailyStats, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	// Header
	if err := w.Write([]string{"Date", "Minutes", "Duration", "Tasks Completed", "Sessions Completed", "Subjects"}); err != nil {
		return err
	}

	for _, d := range stats {
		row := []string{
			d.Date,
			strconv.Itoa(d.TotalMinutesStudied),
			formatMinutes(d.TotalMinutesStudied),
			strconv.Itoa(d.TasksCompleted),
			strconv.Itoa(d.PomodoroSessionsCompleted),
			formatSubjects(d.SubjectBreakdown),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatMinutes(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// formatSubjects renders a breakdown as "Math: 60; Physics: 30", sorted by name.
func formatSubjects(breakdown map[string]int) string {
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, breakdown[name]))
	}
	return strings.Join(parts, "; ")
}

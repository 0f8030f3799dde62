package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
	headerCell   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell         = lipgloss.NewStyle().Padding(0, 1)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTable draws a bordered table with a bold header row.
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(labelStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return cell
		})
	return t.String()
}

type kv struct {
	label string
	value string
}

// renderPairs lines up labelled values under a heading.
func renderPairs(heading string, pairs []kv) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p.label))
	}
	var b strings.Builder
	b.WriteString(headingStyle.Render(heading))
	b.WriteString("\n")
	for _, p := range pairs {
		label := labelStyle.Render(fmt.Sprintf("%-*s", width, p.label))
		fmt.Fprintf(&b, "  %s  %s\n", label, valueStyle.Render(p.value))
	}
	return b.String()
}

// formatMinutes renders minutes as "1h 05m", or "25m" below an hour.
func formatMinutes(mins int) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}

func formatDate(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format("2006-01-02")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

// weeksShown is the number of bars in the weekly chart.
const weeksShown = 8

// focusLabel names minutes that came from pomodoro sessions rather than
// subject-tagged tasks.
const focusLabel = "Focus sessions"

type reportsModel struct {
	store  *store.Store
	width  int
	height int

	mode    reportMode
	stats   map[string]study.DailyStats
	summary study.Summary
	offset  int // 7-day blocks (daily) or 8-week blocks (weekly) back from today

	chart barchart.Model
}

func newReportsModel(s *store.Store) reportsModel {
	return reportsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

type reportsDataMsg struct {
	stats   []study.DailyStats
	summary study.Summary
	err     error
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		stats, err := r.store.DailyStats(ctx)
		if err != nil {
			return reportsDataMsg{err: err}
		}
		summary, err := r.store.AnalyticsSummary(ctx)
		return reportsDataMsg{stats: stats, summary: summary, err: err}
	}
}

// bucket is one bar: a day in daily mode, a Monday-based week in weekly mode.
type bucket struct {
	label    string
	from, to time.Time
}

func (r reportsModel) buckets() []bucket {
	loc := r.store.Location()
	today := study.StartOfDay(r.store.Now(), loc)

	var out []bucket
	switch r.mode {
	case reportWeekly:
		weekday := int(today.Weekday()+6) % 7 // Monday = 0
		thisWeek := today.AddDate(0, 0, -weekday)
		last := thisWeek.AddDate(0, 0, -7*weeksShown*r.offset)
		for i := weeksShown - 1; i >= 0; i-- {
			from := last.AddDate(0, 0, -7*i)
			out = append(out, bucket{label: from.Format("Jan 02"), from: from, to: from.AddDate(0, 0, 7)})
		}
	default:
		end := today.AddDate(0, 0, 1-7*r.offset)
		for i := 7; i >= 1; i-- {
			from := end.AddDate(0, 0, -i)
			out = append(out, bucket{label: from.Format("Mon 02"), from: from, to: from.AddDate(0, 0, 1)})
		}
	}
	return out
}

// aggregate sums the daily stats falling into b.
func (r reportsModel) aggregate(b bucket) study.DailyStats {
	agg := study.DailyStats{SubjectBreakdown: map[string]int{}}
	for d := b.from; d.Before(b.to); d = d.AddDate(0, 0, 1) {
		ds, ok := r.stats[study.DateKey(d, r.store.Location())]
		if !ok {
			continue
		}
		agg.TotalMinutesStudied += ds.TotalMinutesStudied
		agg.TasksCompleted += ds.TasksCompleted
		agg.PomodoroSessionsCompleted += ds.PomodoroSessionsCompleted
		for subject, mins := range ds.SubjectBreakdown {
			agg.SubjectBreakdown[subject] += mins
		}
	}
	return agg
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.err != nil {
			return r, errStatus(msg.err)
		}
		r.stats = make(map[string]study.DailyStats, len(msg.stats))
		for _, ds := range msg.stats {
			r.stats[ds.Date] = ds
		}
		r.summary = msg.summary
		r.buildChart()
		return r, nil

	case dataChangedMsg:
		return r, r.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
		case key.Matches(msg, keys.Enter):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
		default:
			return r, nil
		}
		r.buildChart()
		return r, nil
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, b := range r.buckets() {
		agg := r.aggregate(b)

		var values []barchart.BarValue
		tagged := 0
		for _, subject := range sortedSubjects(agg.SubjectBreakdown) {
			mins := agg.SubjectBreakdown[subject]
			tagged += mins
			values = append(values, barchart.BarValue{
				Name:  subject,
				Value: float64(mins) / 60,
				Style: lipgloss.NewStyle().Foreground(subjectColor(subject)),
			})
		}
		if rest := agg.TotalMinutesStudied - tagged; rest > 0 {
			values = append(values, barchart.BarValue{
				Name:  focusLabel,
				Value: float64(rest) / 60,
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			})
		}

		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  b.label,
			Values: values,
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func sortedSubjects(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	buckets := r.buckets()
	first, last := buckets[0], buckets[len(buckets)-1]
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", first.from.Format("Jan 02"), last.to.AddDate(0, 0, -1).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  enter: daily/weekly  (hours per bar)")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderLegend(), "", r.renderTable(buckets), "", r.renderRates(), "", nav,
		),
	)
}

func (r reportsModel) renderTable(buckets []bucket) string {
	var rows []string
	heading := "Date"
	if r.mode == reportWeekly {
		heading = "Week of"
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %8s %9s", heading, "Studied", "Tasks", "Sessions")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", 42)))

	total := 0
	for _, b := range buckets {
		agg := r.aggregate(b)
		if agg.TotalMinutesStudied == 0 && agg.TasksCompleted == 0 && agg.PomodoroSessionsCompleted == 0 {
			continue
		}
		total += agg.TotalMinutesStudied
		rows = append(rows, fmt.Sprintf("  %-12s %10s %8d %9d",
			b.label, formatMinutes(agg.TotalMinutesStudied), agg.TasksCompleted, agg.PomodoroSessionsCompleted))
	}
	if len(rows) == 2 {
		return mutedStyle.Render("  No study activity in this period")
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s", "Total", formatHours(total))))
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderLegend() string {
	seen := make(map[string]bool)
	var names []string
	focus := false
	for _, b := range r.buckets() {
		agg := r.aggregate(b)
		tagged := 0
		for subject, mins := range agg.SubjectBreakdown {
			tagged += mins
			if !seen[subject] {
				seen[subject] = true
				names = append(names, subject)
			}
		}
		if agg.TotalMinutesStudied > tagged {
			focus = true
		}
	}
	sort.Strings(names)

	var items []string
	for _, name := range names {
		items = append(items, fmt.Sprintf("%s %s", subjectDot(name), name))
	}
	if focus {
		items = append(items, lipgloss.NewStyle().Foreground(colorPrimary).Render("●")+" "+focusLabel)
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}

func (r reportsModel) renderRates() string {
	return fmt.Sprintf("  %s %s   %s %s",
		mutedStyle.Render("Completion rate"), highlightStyle.Render(fmt.Sprintf("%d%%", r.summary.CompletionRate)),
		mutedStyle.Render("Focus efficiency"), highlightStyle.Render(fmt.Sprintf("%d%%", r.summary.FocusEfficiency)),
	)
}

package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyr/internal/study"
)

func newStatsCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the analytics summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			sum, err := s.AnalyticsSummary(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), sum)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSummary(sum))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func renderSummary(sum study.Summary) string {
	out := renderPairs("Study summary", []kv{
		{"Today", formatMinutes(sum.TodayStudyTime)},
		{"This week", formatMinutes(sum.WeekStudyTime)},
		{"All time", formatMinutes(sum.TotalStudyTime)},
		{"Tasks today", strconv.Itoa(sum.TasksCompletedToday)},
		{"Tasks this week", strconv.Itoa(sum.TasksCompletedWeek)},
		{"Streak", fmt.Sprintf("%d days (best %d)", sum.CurrentStreak, sum.LongestStreak)},
		{"Completion rate", fmt.Sprintf("%d%%", sum.CompletionRate)},
		{"Focus efficiency", fmt.Sprintf("%d%%", sum.FocusEfficiency)},
	})
	if len(sum.SubjectDistribution) == 0 {
		return out
	}

	rows := make([][]string, 0, len(sum.SubjectDistribution))
	for _, sm := range sum.SubjectDistribution {
		rows = append(rows, []string{sm.Subject, formatMinutes(sm.Minutes)})
	}
	return out + "\n" + headingStyle.Render("Subjects") + "\n" +
		renderTable([]string{"Subject", "Time"}, rows) + "\n"
}

func newDailyCommand(a *app) *cobra.Command {
	var (
		asJSON bool
		days   int
	)

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show per-day study statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			stats, err := s.DailyStats(cmd.Context())
			if err != nil {
				return err
			}
			if days > 0 && len(stats) > days {
				stats = stats[len(stats)-days:]
			}
			if asJSON {
				if stats == nil {
					stats = []study.DailyStats{}
				}
				return printJSON(cmd.OutOrStdout(), stats)
			}
			if len(stats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No study activity recorded yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderDaily(stats))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stats as JSON")
	cmd.Flags().IntVar(&days, "days", 0, "only show the most recent N active days (0 = all)")
	return cmd
}

func renderDaily(stats []study.DailyStats) string {
	rows := make([][]string, 0, len(stats))
	for _, d := range stats {
		rows = append(rows, []string{
			d.Date,
			formatMinutes(d.TotalMinutesStudied),
			strconv.Itoa(d.TasksCompleted),
			strconv.Itoa(d.PomodoroSessionsCompleted),
			subjectList(d.SubjectBreakdown),
		})
	}
	return renderTable([]string{"Date", "Studied", "Tasks", "Sessions", "Subjects"}, rows)
}

func subjectList(m map[string]int) string {
	if len(m) == 0 {
		return "-"
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %s", name, formatMinutes(m[name]))
	}
	return strings.Join(parts, ", ")
}

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStreakCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Show the study-day streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			st, err := s.GetStreak(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), st)
			}

			pairs := []kv{
				{"Current", strconv.Itoa(st.CurrentStreak) + " days"},
				{"Longest", strconv.Itoa(st.LongestStreak) + " days"},
				{"Last study day", formatDate(st.LastStudyDate, s.Location())},
			}
			out := renderPairs("Streak", pairs)
			if st.CurrentStreak > 0 && st.Broken(s.Now(), s.Location()) {
				out += labelStyle.Render("  Study today to start a new streak.") + "\n"
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the streak as JSON")
	return cmd
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyr/internal/store"
)

func newFocusCommand(a *app) *cobra.Command {
	var (
		focus     int
		brk       int
		taskRef   string
		abandoned bool
	)

	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Log a pomodoro focus session",
		Long: `Focus records a focus session that already happened. Finished sessions
count toward study time and the streak; pass --abandoned for one that was cut short.
Durations default to the pomodoro settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			settings, err := s.GetSettings(ctx)
			if err != nil {
				return err
			}
			in := store.SessionInput{
				FocusDuration: settings.PomodoroFocusDuration,
				BreakDuration: settings.PomodoroBreakDuration,
				WasCompleted:  !abandoned,
			}
			if cmd.Flags().Changed("minutes") {
				in.FocusDuration = focus
			}
			if cmd.Flags().Changed("break") {
				in.BreakDuration = brk
			}
			if taskRef != "" {
				t, err := resolveTask(ctx, s, taskRef)
				if err != nil {
					return err
				}
				in.TaskID = &t.ID
			}

			p, err := s.CreatePomodoroSession(ctx, in)
			if err != nil {
				return err
			}
			if !p.WasCompleted {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged abandoned session (%s)\n", formatMinutes(p.FocusDuration))
				return nil
			}
			streak, err := s.GetStreak(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s focus session. Streak: %d days\n",
				formatMinutes(p.FocusDuration), streak.CurrentStreak)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&focus, "minutes", "m", 25, "focus minutes")
	f.IntVarP(&brk, "break", "b", 5, "break minutes")
	f.StringVarP(&taskRef, "task", "t", "", "task id or id prefix the session was spent on")
	f.BoolVar(&abandoned, "abandoned", false, "the session was not finished")
	return cmd
}

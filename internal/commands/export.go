package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyr/internal/export"
	"github.com/sadopc/studyr/internal/study"
)

func newExportCommand(a *app) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export study data to CSV, JSON or YAML",
		Long: `Export writes the analytics summary, streak, daily stats and every task,
goal and pomodoro session to a file. CSV carries the daily stats only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			doc, err := export.Collect(cmd.Context(), s)
			if err != nil {
				return err
			}
			if out == "" {
				out = export.DefaultPath(".", f, study.DateKey(s.Now(), s.Location()))
			}
			if err := export.Write(f, doc, out); err != nil {
				return err
			}
			a.log.Info("export written", "format", f, "path", out)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "export format: csv, json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: ./studyr-export-<date>.<ext>)")
	return cmd
}

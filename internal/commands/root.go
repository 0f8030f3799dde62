// Package commands wires the studyr command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/studyr/internal/config"
	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/tui"
)

// app holds the state shared by every subcommand for one invocation.
type app struct {
	version    string
	configPath string

	cfg     *config.Config
	loc     *time.Location
	log     *slog.Logger
	store   *store.Store
	logFile *os.File

	// now is the store clock; tests pin it.
	now func() time.Time
}

func newApp(version string) *app {
	return &app{version: version, now: time.Now}
}

// Execute runs the studyr command line.
func Execute(ctx context.Context, version string) error {
	a := newApp(version)
	defer a.close()
	return newRootCommand(a).ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "studyr",
		Short: "Study planner with streaks, focus sessions and analytics",
		Long: `studyr tracks study tasks, goals and pomodoro focus sessions, and turns
them into daily stats, a weekly summary and a study-day streak.

Run without arguments to open the terminal UI.`,
		Version:       a.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			p := tea.NewProgram(tui.NewApp(s), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: ./studyr.yaml or $XDG_CONFIG_HOME/studyr/studyr.yaml)")
	root.PersistentFlags().String("db", "", "database path (default: ~/.config/studyr/studyr.db)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("timezone", "Local", "IANA timezone used for day boundaries")

	root.AddCommand(
		newServeCommand(a),
		newStatsCommand(a),
		newDailyCommand(a),
		newExportCommand(a),
		newTaskCommand(a),
		newFocusCommand(a),
		newStreakCommand(a),
		newSeedCommand(a),
		newVersionCommand(a),
	)
	return root
}

// setup loads configuration and installs the logger. The TUI owns the
// terminal, so when it runs logs go to a file beside the database.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	if cfg.Storage.DBPath == "" {
		if cfg.Storage.DBPath, err = store.DefaultDBPath(); err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
	}
	a.cfg = cfg
	a.loc = loc

	var w io.Writer = cmd.ErrOrStderr()
	if !cmd.HasParent() {
		f, err := openLogFile(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		a.logFile = f
		w = f
	}
	a.log = config.SetupLogger(cfg.App.LogLevel, w)
	return nil
}

func openLogFile(dbPath string) (*os.File, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "studyr.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// openStore opens the configured database once per invocation.
func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := store.New(a.cfg.Storage.DBPath,
		store.WithLocation(a.loc),
		store.WithLogger(a.log),
		store.WithClock(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.store = s
	return s, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

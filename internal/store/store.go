package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db  *sql.DB
	now func() time.Time
	loc *time.Location
	log *slog.Logger

	// streakMu serializes the streak read-modify-write together with the
	// completion that triggered it.
	streakMu sync.Mutex
}

type Option func(*Store)

// WithClock overrides the time source used for completion stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the calendar used for day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string, opts ...Option) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{
		db:  db,
		now: time.Now,
		loc: time.Local,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory(opts ...Option) (*Store, error) {
	return New(":memory:", opts...)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Location is the calendar used for day boundaries.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Now returns the store clock's current instant.
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	if err == nil {
		s.log.Info("database migrated", "from", version, "to", currentVersion)
	}
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id                  TEXT PRIMARY KEY,
		title               TEXT NOT NULL,
		description         TEXT,
		status              TEXT NOT NULL DEFAULT 'pending',
		priority            TEXT NOT NULL DEFAULT 'important',
		subject             TEXT,
		deadline            TEXT,
		estimated_duration  INTEGER,
		actual_duration     INTEGER,
		parent_task_id      TEXT REFERENCES tasks(id) ON DELETE SET NULL,
		resources           TEXT NOT NULL DEFAULT '[]',
		is_recurring        INTEGER NOT NULL DEFAULT 0,
		recurring_schedule  TEXT,
		completed_at        TEXT,
		created_at          TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id);

	CREATE TABLE IF NOT EXISTS goals (
		id                TEXT PRIMARY KEY,
		title             TEXT NOT NULL,
		description       TEXT,
		type              TEXT NOT NULL,
		target_date       TEXT NOT NULL,
		status            TEXT NOT NULL DEFAULT 'active',
		progress          INTEGER NOT NULL DEFAULT 0,
		related_task_ids  TEXT NOT NULL DEFAULT '[]',
		completed_at      TEXT,
		created_at        TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pomodoro_sessions (
		id              TEXT PRIMARY KEY,
		task_id         TEXT REFERENCES tasks(id) ON DELETE SET NULL,
		focus_duration  INTEGER NOT NULL,
		break_duration  INTEGER NOT NULL DEFAULT 0,
		was_completed   INTEGER NOT NULL DEFAULT 0,
		completed_at    TEXT,
		created_at      TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_completed ON pomodoro_sessions(completed_at);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('pomodoro_focus',        '25'),
		('pomodoro_break',        '5'),
		('pomodoro_long_break',   '15'),
		('pomodoro_count',        '4'),
		('theme',                 'dark'),
		('notifications_enabled', 'true'),
		('sound_enabled',         'true'),
		('current_streak',        '0'),
		('longest_streak',        '0'),
		('last_study_date',       ''),
		('updated_at',            strftime('%Y-%m-%dT%H:%M:%SZ','now'));
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/studyr/studyr.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "studyr", "studyr.db"), nil
}

// withTx runs fn inside a transaction and commits when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// stamp returns the clock's current instant in UTC.
func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

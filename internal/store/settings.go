package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/studyr/internal/study"
)

const (
	keyFocus         = "pomodoro_focus"
	keyBreak         = "pomodoro_break"
	keyLongBreak     = "pomodoro_long_break"
	keyCount         = "pomodoro_count"
	keyTheme         = "theme"
	keyNotifications = "notifications_enabled"
	keySound         = "sound_enabled"
	keyCurrentStreak = "current_streak"
	keyLongestStreak = "longest_streak"
	keyLastStudyDate = "last_study_date"
	keyUpdatedAt     = "updated_at"
)

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	return getSetting(ctx, s.db, key)
}

func getSetting(ctx context.Context, q querier, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	return setSetting(ctx, s.db, key, value)
}

func setSetting(ctx context.Context, q querier, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetAllSettings(ctx context.Context) ([]Setting, error) {
	return allSettings(ctx, s.db)
}

func allSettings(ctx context.Context, q querier) ([]Setting, error) {
	rows, err := q.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// GetSettings returns the singleton settings record, streak included.
func (s *Store) GetSettings(ctx context.Context) (*study.Settings, error) {
	return readSettings(ctx, s.db)
}

func readSettings(ctx context.Context, q querier) (*study.Settings, error) {
	all, err := allSettings(ctx, q)
	if err != nil {
		return nil, err
	}
	kv := make(map[string]string, len(all))
	for _, st := range all {
		kv[st.Key] = st.Value
	}

	out := &study.Settings{
		PomodoroFocusDuration:     atoi(kv[keyFocus], 25),
		PomodoroBreakDuration:     atoi(kv[keyBreak], 5),
		PomodoroLongBreakDuration: atoi(kv[keyLongBreak], 15),
		PomodoroCount:             atoi(kv[keyCount], 4),
		Theme:                     kv[keyTheme],
		NotificationsEnabled:      kv[keyNotifications] == "true",
		SoundEnabled:              kv[keySound] == "true",
		CurrentStreak:             atoi(kv[keyCurrentStreak], 0),
		LongestStreak:             atoi(kv[keyLongestStreak], 0),
		UpdatedAt:                 parseTime(kv[keyUpdatedAt]),
	}
	if out.Theme == "" {
		out.Theme = "dark"
	}
	out.LastStudyDate = parseTimePtr(kv[keyLastStudyDate])
	return out, nil
}

// UpdateSettings applies a preferences patch and bumps updatedAt.
func (s *Store) UpdateSettings(ctx context.Context, p SettingsPatch) (*study.Settings, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var out *study.Settings
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		updates := map[string]string{}
		if p.PomodoroFocusDuration != nil {
			updates[keyFocus] = strconv.Itoa(*p.PomodoroFocusDuration)
		}
		if p.PomodoroBreakDuration != nil {
			updates[keyBreak] = strconv.Itoa(*p.PomodoroBreakDuration)
		}
		if p.PomodoroLongBreakDuration != nil {
			updates[keyLongBreak] = strconv.Itoa(*p.PomodoroLongBreakDuration)
		}
		if p.PomodoroCount != nil {
			updates[keyCount] = strconv.Itoa(*p.PomodoroCount)
		}
		if p.Theme != nil {
			updates[keyTheme] = *p.Theme
		}
		if p.NotificationsEnabled != nil {
			updates[keyNotifications] = strconv.FormatBool(*p.NotificationsEnabled)
		}
		if p.SoundEnabled != nil {
			updates[keySound] = strconv.FormatBool(*p.SoundEnabled)
		}
		updates[keyUpdatedAt] = formatTime(s.stamp())

		for k, v := range updates {
			if err := setSetting(ctx, tx, k, v); err != nil {
				return err
			}
		}
		var err error
		out, err = readSettings(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetStreak(ctx context.Context) (study.Streak, error) {
	return readStreak(ctx, s.db)
}

func readStreak(ctx context.Context, q querier) (study.Streak, error) {
	st, err := readSettings(ctx, q)
	if err != nil {
		return study.Streak{}, err
	}
	return st.Streak(), nil
}

// SaveStreak overwrites the stored streak fields.
func (s *Store) SaveStreak(ctx context.Context, st study.Streak) error {
	s.streakMu.Lock()
	defer s.streakMu.Unlock()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return writeStreak(ctx, tx, st, s.stamp())
	})
}

func writeStreak(ctx context.Context, q querier, st study.Streak, now time.Time) error {
	last := ""
	if st.LastStudyDate != nil {
		last = formatTime(*st.LastStudyDate)
	}
	for k, v := range map[string]string{
		keyCurrentStreak: strconv.Itoa(st.CurrentStreak),
		keyLongestStreak: strconv.Itoa(st.LongestStreak),
		keyLastStudyDate: last,
		keyUpdatedAt:     formatTime(now),
	} {
		if err := setSetting(ctx, q, k, v); err != nil {
			return err
		}
	}
	return nil
}

// recordActivity advances the streak for a completion at instant at. Callers
// hold streakMu and pass the transaction that commits the completion.
func (s *Store) recordActivity(ctx context.Context, q querier, at time.Time) error {
	cur, err := readStreak(ctx, q)
	if err != nil {
		return fmt.Errorf("read streak: %w", err)
	}
	next := study.RecordStudyActivity(cur, at, s.loc)
	if next.CurrentStreak == cur.CurrentStreak && next.LongestStreak == cur.LongestStreak &&
		sameInstant(next.LastStudyDate, cur.LastStudyDate) {
		return nil
	}
	if err := writeStreak(ctx, q, next, s.stamp()); err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	s.log.Debug("streak updated",
		"current", next.CurrentStreak,
		"longest", next.LongestStreak,
		"day", study.DateKey(at, s.loc),
	)
	return nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

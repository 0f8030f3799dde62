package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config search at empty directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "Local", cfg.App.Timezone)
	assert.Equal(t, "", cfg.Storage.DBPath)
	assert.Equal(t, "127.0.0.1:5000", cfg.Server.Addr)
}

func TestLoadFileFromWorkingDir(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "studyr.yaml"), `
app:
  log_level: debug
  timezone: Asia/Tokyo
server:
  addr: ":8080"
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "Asia/Tokyo", cfg.App.Timezone)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadTOMLFromXDG(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "xdg", "studyr", "studyr.toml"), `
[storage]
db_path = "/tmp/custom.db"
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.Storage.DBPath)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "elsewhere", "my.yaml")
	writeFile(t, path, "server:\n  addr: \"0.0.0.0:9000\"\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "studyr.yaml"), "app: [unclosed\n")

	_, err := Load("", nil)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "studyr.yaml"), "app:\n  log_level: warn\n")
	t.Setenv("STUDYR_APP_LOG_LEVEL", "error")
	t.Setenv("STUDYR_STORAGE_DB_PATH", "/data/env.db")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.App.LogLevel)
	assert.Equal(t, "/data/env.db", cfg.Storage.DBPath)
}

func TestFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYR_SERVER_ADDR", ":7000")
	t.Setenv("STUDYR_APP_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", "127.0.0.1:5000", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--addr", ":9999"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	// An unset flag does not mask the environment.
	assert.Equal(t, "warn", cfg.App.LogLevel)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "study", "s.db"), expandHome("~/study/s.db"))
	assert.Equal(t, "/abs/s.db", expandHome("/abs/s.db"))
	assert.Equal(t, "", expandHome(""))
}

func TestLocation(t *testing.T) {
	tests := []struct {
		tz      string
		want    string
		wantErr bool
	}{
		{tz: "", want: time.Local.String()},
		{tz: "Local", want: time.Local.String()},
		{tz: "local", want: time.Local.String()},
		{tz: "Europe/Berlin", want: "Europe/Berlin"},
		{tz: "UTC", want: "UTC"},
		{tz: "Mars/Olympus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.tz, func(t *testing.T) {
			cfg := &Config{App: AppConfig{Timezone: tt.tz}}
			loc, err := cfg.Location()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := SetupLogger("warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	slog.Error("via default")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown key=value")
	assert.Contains(t, out, "via default")
}

// Package config loads studyr settings from defaults, an optional config
// file, STUDYR_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "STUDYR"

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	// Timezone is an IANA name, or "Local" for the system zone.
	Timezone string `mapstructure:"timezone"`
}

type StorageConfig struct {
	// DBPath empty means the per-user default location.
	DBPath string `mapstructure:"db_path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"log-level": "app.log_level",
	"timezone":  "app.timezone",
	"db":        "storage.db_path",
	"addr":      "server.addr",
}

// Load reads configuration. configPath overrides the file search; flags, when
// non-nil, take precedence over every other source for the flags the user
// actually set.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("studyr")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "studyr"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Debug("no config file found, using defaults")
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Storage.DBPath = expandHome(cfg.Storage.DBPath)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.timezone", "Local")
	v.SetDefault("storage.db_path", "")
	v.SetDefault("server.addr", "127.0.0.1:5000")
}

// Location resolves the configured timezone used for every day boundary.
func (c *Config) Location() (*time.Location, error) {
	switch tz := strings.TrimSpace(c.App.Timezone); {
	case tz == "" || strings.EqualFold(tz, "local"):
		return time.Local, nil
	default:
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", tz, err)
		}
		return loc, nil
	}
}

// expandHome turns a leading "~/" into the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger installs a text handler writing to w at the given level as the
// default logger and returns it.
func SetupLogger(level string, w io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

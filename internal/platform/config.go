package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/tracker/pkg/overlay"
)

// Environment variables that override the config file.
const (
	EnvStore    = "TRACKER_STORE"
	EnvLogLevel = "TRACKER_LOG_LEVEL"
)

// Config is the content of tracker.yaml.
type Config struct {
	Store      string     `yaml:"store"`
	LogLevel   string     `yaml:"log_level"`
	Poll       PollConfig `yaml:"poll"`
	WatchStore *bool      `yaml:"watch_store"`
}

// PollConfig tunes the dashboard poll loop. Durations use time.ParseDuration syntax.
type PollConfig struct {
	Schedule []string `yaml:"schedule"`
	Ceiling  string   `yaml:"ceiling"`
	Jitter   *bool    `yaml:"jitter"`
}

// LoadConfig reads a config file. A missing file yields an empty config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := cfg.PollOptions(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvStore); v != "" {
		c.Store = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Level parses LogLevel, defaulting to Info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
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

// WatchStoreEnabled reports whether the store file watcher should run (default true).
func (c *Config) WatchStoreEnabled() bool {
	return c.WatchStore == nil || *c.WatchStore
}

// PollOptions converts the poll section into poller options.
func (c *Config) PollOptions() ([]overlay.Option, error) {
	var opts []overlay.Option
	if len(c.Poll.Schedule) > 0 {
		schedule := make([]time.Duration, 0, len(c.Poll.Schedule))
		for _, s := range c.Poll.Schedule {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("poll.schedule: %w", err)
			}
			if d <= 0 {
				return nil, fmt.Errorf("poll.schedule: %s is not positive", s)
			}
			schedule = append(schedule, d)
		}
		opts = append(opts, overlay.WithSchedule(schedule))
	}
	if c.Poll.Ceiling != "" {
		d, err := time.ParseDuration(c.Poll.Ceiling)
		if err != nil {
			return nil, fmt.Errorf("poll.ceiling: %w", err)
		}
		opts = append(opts, overlay.WithCeiling(d))
	}
	if c.Poll.Jitter != nil && !*c.Poll.Jitter {
		opts = append(opts, overlay.WithJitter(func() float64 { return 1 }))
	}
	return opts, nil
}

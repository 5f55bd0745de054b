// Package config loads kanbantree settings from a YAML file and the
// environment. Environment variables win over the file, and the file wins
// over DefaultConfig.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/kanbantree/internal/loader"
	"github.com/alexanderramin/kanbantree/internal/seed"
)

// Backend selects the key-value store behind persistence.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// Config holds every setting the CLI reads at startup.
type Config struct {
	Backend   Backend `yaml:"backend"`
	DBPath    string  `yaml:"db_path"`
	RedisAddr string  `yaml:"redis_addr"`

	BoardKey string `yaml:"board_key"`
	TreeKey  string `yaml:"tree_key"`

	FetchLatencyMinMs int    `yaml:"fetch_latency_min_ms"`
	FetchLatencyMaxMs int    `yaml:"fetch_latency_max_ms"`
	StalePolicy       string `yaml:"stale_policy"`
	SavedIndicatorMs  int    `yaml:"saved_indicator_ms"`

	LogLevel string `yaml:"log_level"`
}

// Dir returns ~/.kanbantree, or ".kanbantree" if the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kanbantree"
	}
	return filepath.Join(home, ".kanbantree")
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:           BackendSQLite,
		DBPath:            filepath.Join(Dir(), "kanbantree.db"),
		RedisAddr:         "localhost:6379",
		BoardKey:          seed.BoardKey,
		TreeKey:           seed.TreeKey,
		FetchLatencyMinMs: int(loader.DefaultLatencyMin / time.Millisecond),
		FetchLatencyMaxMs: int(loader.DefaultLatencyMax / time.Millisecond),
		StalePolicy:       loader.DiscardStale.String(),
		SavedIndicatorMs:  1500,
		LogLevel:          "warn",
	}
}

// Load reads path (DefaultPath when empty), applies KANBANTREE_* overrides
// and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KANBANTREE_BACKEND"); v != "" {
		c.Backend = Backend(strings.ToLower(v))
	}
	if v := os.Getenv("KANBANTREE_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("KANBANTREE_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("KANBANTREE_BOARD_KEY"); v != "" {
		c.BoardKey = v
	}
	if v := os.Getenv("KANBANTREE_TREE_KEY"); v != "" {
		c.TreeKey = v
	}
	if v := os.Getenv("KANBANTREE_FETCH_LATENCY_MIN_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.FetchLatencyMinMs = n
		}
	}
	if v := os.Getenv("KANBANTREE_FETCH_LATENCY_MAX_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.FetchLatencyMaxMs = n
		}
	}
	if v := os.Getenv("KANBANTREE_STALE_POLICY"); v != "" {
		c.StalePolicy = v
	}
	if v := os.Getenv("KANBANTREE_SAVED_INDICATOR_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.SavedIndicatorMs = n
		}
	}
	if v := os.Getenv("KANBANTREE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate rejects settings the CLI cannot act on.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want sqlite, redis or memory)", c.Backend)
	}
	if c.FetchLatencyMinMs < 0 || c.FetchLatencyMaxMs < c.FetchLatencyMinMs {
		return fmt.Errorf("fetch latency range [%d, %d] ms is invalid", c.FetchLatencyMinMs, c.FetchLatencyMaxMs)
	}
	if c.BoardKey == c.TreeKey {
		return fmt.Errorf("board_key and tree_key must differ (both %q)", c.BoardKey)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy returns the parsed stale-result policy.
func (c Config) Policy() (loader.StalePolicy, error) {
	return loader.ParseStalePolicy(c.StalePolicy)
}

// FetchLatency returns the simulated fetch delay bounds.
func (c Config) FetchLatency() (min, max time.Duration) {
	return time.Duration(c.FetchLatencyMinMs) * time.Millisecond,
		time.Duration(c.FetchLatencyMaxMs) * time.Millisecond
}

// SavedIndicator returns how long the saved flag stays visible.
func (c Config) SavedIndicator() time.Duration {
	return time.Duration(c.SavedIndicatorMs) * time.Millisecond
}

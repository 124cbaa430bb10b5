// Package config loads server settings from defaults, an optional YAML
// file and the environment, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds process settings.
type Config struct {
	Port           int           `yaml:"port"`
	Store          string        `yaml:"store"`
	DBPath         string        `yaml:"db_path"`
	StatesDataPath string        `yaml:"states_data_path"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	LogLevel       string        `yaml:"log_level"`
	RateLimit      int           `yaml:"mutation_rate_limit"`
	RateWindow     time.Duration `yaml:"mutation_rate_window"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:       3500,
		Store:      StoreSQLite,
		DBPath:     "data/states.db",
		LogLevel:   "info",
		RateLimit:  60,
		RateWindow: time.Minute,
		CORSOrigins: []string{
			"http://localhost:5173",
			"http://localhost:3000",
		},
	}
}

// Load builds a Config. If STATES_CONFIG names a file it is applied over
// the defaults; environment variables are applied last.
func Load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv("STATES_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = p
	}
	if v := getenv("STORE"); v != "" {
		c.Store = strings.ToLower(v)
	}
	if v := getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := getenv("STATES_DATA_PATH"); v != "" {
		c.StatesDataPath = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}
	if v := getenv("MUTATION_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MUTATION_RATE_LIMIT: %w", err)
		}
		c.RateLimit = n
	}
	if v := getenv("MUTATION_RATE_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MUTATION_RATE_WINDOW: %w", err)
		}
		c.RateWindow = d
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.RateLimit < 0 {
		return errors.New("mutation_rate_limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateWindow <= 0 {
		return errors.New("mutation_rate_window must be positive")
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

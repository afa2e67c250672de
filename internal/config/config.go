// Package config loads the dinner roulette configuration from a YAML file
// overlaid with environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration.
// Sources, highest priority first:
//  1. explicit path from the -config flag
//  2. CONFIG_PATH
//  3. ./local.yaml
//  4. environment variables only
//
// Environment variables always overlay whatever the file provided.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Store      StoreConfig      `yaml:"store"`
	Categories CategoriesConfig `yaml:"categories"`
	Distances  DistancesConfig  `yaml:"distances"`
	Selection  SelectionConfig  `yaml:"selection"`
	EatAtHome  EatAtHomeConfig  `yaml:"eat_at_home"`
	SpinLimit  SpinLimitConfig  `yaml:"spin_limit"`
	History    HistoryConfig    `yaml:"history"`
	Backup     BackupConfig     `yaml:"backup"`
	Places     PlacesConfig     `yaml:"places"`
	Log        LogConfig        `yaml:"log"`
}

type HTTPConfig struct {
	Host              string   `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port              string   `yaml:"port" env:"HTTP_PORT" env-default:"8000"`
	BaseURL           string   `yaml:"base_url" env:"BASE_URL"`
	CookieSecure      bool     `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"false"`
	CORSOrigins       []string `yaml:"cors_origins" env:"CORS_ORIGINS"`
	SpinRatePerMinute int      `yaml:"spin_rate_per_minute" env:"SPIN_RATE_PER_MINUTE" env-default:"30"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// StoreConfig selects the key-value backend.
type StoreConfig struct {
	Backend    string        `yaml:"backend" env:"STORE_BACKEND" env-default:"redis"`
	RedisURL   string        `yaml:"redis_url" env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
	SQLitePath string        `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"dinnerroulette.db"`
	OpTimeout  time.Duration `yaml:"op_timeout" env:"STORE_OP_TIMEOUT" env-default:"2s"`
}

type CategoriesConfig struct {
	Defaults []string `yaml:"defaults" env:"DEFAULT_CATEGORIES" env-default:"quick,sit-down,nice"`
}

type DistancesConfig struct {
	Default string `yaml:"default" env:"DEFAULT_DISTANCE" env-default:"nearby"`
}

type SelectionConfig struct {
	Cooldown time.Duration `yaml:"cooldown" env:"SPIN_COOLDOWN" env-default:"15m"`
}

// EatAtHomeConfig controls the synthetic "stay in" option added to every pool.
type EatAtHomeConfig struct {
	Enabled        bool   `yaml:"enabled" env:"EAT_AT_HOME_ENABLED" env-default:"true"`
	Name           string `yaml:"name" env:"EAT_AT_HOME_NAME" env-default:"Eat at Home"`
	Weight         int    `yaml:"weight" env:"EAT_AT_HOME_WEIGHT" env-default:"2"`
	CooldownExempt bool   `yaml:"cooldown_exempt" env:"EAT_AT_HOME_COOLDOWN_EXEMPT" env-default:"true"`
}

type SpinLimitConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"SPIN_TIMEOUT" env-default:"30s"`
	Enforce bool          `yaml:"enforce" env:"SPIN_LIMIT_ENFORCE" env-default:"false"`
}

type HistoryConfig struct {
	RetentionDays int `yaml:"retention_days" env:"HISTORY_RETENTION_DAYS" env-default:"30"`
}

// Retention returns the retention window as a duration.
func (h HistoryConfig) Retention() time.Duration {
	return time.Duration(h.RetentionDays) * 24 * time.Hour
}

type BackupConfig struct {
	Dir  string `yaml:"dir" env:"BACKUP_DIR" env-default:"backups"`
	Auto bool   `yaml:"auto" env:"BACKUP_AUTO" env-default:"true"`
}

// PlacesConfig configures the optional place lookup client.
// An empty APIKey disables it.
type PlacesConfig struct {
	APIKey            string  `yaml:"api_key" env:"GOOGLE_PLACES_API_KEY"`
	Location          string  `yaml:"location" env:"PLACES_LOCATION"`
	RadiusMeters      int     `yaml:"radius_meters" env:"PLACES_RADIUS_METERS" env-default:"16093"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"PLACES_RPS" env-default:"5"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Validate checks values cleanenv cannot express as tags.
func (c *Config) Validate() error {
	if !slices.Contains([]string{BackendRedis, BackendSQLite}, c.Store.Backend) {
		return fmt.Errorf("unknown store backend %q (want %s or %s)", c.Store.Backend, BackendRedis, BackendSQLite)
	}
	if c.Store.OpTimeout <= 0 {
		return fmt.Errorf("store op_timeout must be positive")
	}
	defaults := make([]string, 0, len(c.Categories.Defaults))
	for _, cat := range c.Categories.Defaults {
		if cat = strings.ToLower(strings.TrimSpace(cat)); cat != "" {
			defaults = append(defaults, cat)
		}
	}
	if len(defaults) == 0 {
		return fmt.Errorf("at least one default category is required")
	}
	c.Categories.Defaults = defaults
	if c.EatAtHome.Weight < 0 {
		return fmt.Errorf("eat_at_home weight must not be negative")
	}
	if c.Selection.Cooldown < 0 {
		return fmt.Errorf("selection cooldown must not be negative")
	}
	if c.SpinLimit.Timeout <= 0 {
		return fmt.Errorf("spin_limit timeout must be positive")
	}
	if c.History.RetentionDays <= 0 {
		return fmt.Errorf("history retention_days must be positive")
	}
	if c.Backup.Dir == "" {
		return fmt.Errorf("backup dir is required")
	}
	return nil
}

// MustLoad wraps Load and panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration in priority order and validates it.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config %q: %w", p, err)
		}
		return nil
	}

	switch {
	case path != "":
		if err := readFile(path); err != nil {
			return nil, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}
	default:
		if _, err := os.Stat("local.yaml"); err == nil {
			if err := readFile("local.yaml"); err != nil {
				return nil, err
			}
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

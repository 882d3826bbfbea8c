// Package daemon manages the LifeIO daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Auth      AuthConfig      `toml:"auth"`
	Database  DatabaseConfig  `toml:"database"`
	Lock      LockConfig      `toml:"lock"`
	Events    EventsConfig    `toml:"events"`
	Stats     StatsConfig     `toml:"stats"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	RateLimit   int      `toml:"rate_limit"`  // requests per window per IP, 0 = off
	RateWindow  string   `toml:"rate_window"` // e.g. "1m"
}

// AuthConfig controls access token verification.
type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	Issuer       string `toml:"issuer"`
	Audience     string `toml:"audience"`
	CookieName   string `toml:"cookie_name"`
	AllowedEmail string `toml:"allowed_email"`
}

// DatabaseConfig selects and locates the record store.
type DatabaseConfig struct {
	Driver   string `toml:"driver"` // "sqlite" or "postgres"
	Dir      string `toml:"dir"`    // sqlite data directory
	DSN      string `toml:"dsn"`
	AdminDSN string `toml:"admin_dsn"` // elevated role for category seeding
}

// LockConfig selects the per-user lock. Empty RedisAddr means in-process.
type LockConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTL           string `toml:"ttl"`
	Wait          string `toml:"wait"`
}

// EventsConfig enables Kafka publication when Brokers is set.
type EventsConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// StatsConfig controls aggregation windows.
type StatsConfig struct {
	Timezone string `toml:"timezone"` // IANA name, "Local" or "UTC"
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// TelemetryConfig controls metrics and health checks.
type TelemetryConfig struct {
	Prometheus     bool   `toml:"prometheus"`
	HealthInterval string `toml:"health_interval"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := lifeioHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        5000,
			CORSOrigins: []string{},
			RateLimit:   120,
			RateWindow:  "1m",
		},
		Auth: AuthConfig{
			CookieName: "sb-access-token",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Dir:    homeDir,
		},
		Lock: LockConfig{
			TTL:  "10s",
			Wait: "5s",
		},
		Events: EventsConfig{
			Topic: "lifeio.activities",
		},
		Stats: StatsConfig{
			Timezone: "Local",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Prometheus:     true,
			HealthInterval: "30s",
		},
	}
}

// LoadConfig reads .env, then ~/.lifeio/config.toml, then environment
// overrides, falling back to defaults for anything unset.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return LoadConfigFrom(filepath.Join(lifeioHome(), "config.toml"))
}

// LoadConfigFrom is LoadConfig with an explicit file path.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("LIFEIO_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.Driver = "postgres"
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DATABASE_ADMIN_URL"); v != "" {
		cfg.Database.AdminDSN = v
	}
	if v := os.Getenv("LIFEIO_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LIFEIO_PORT: %w", err)
		}
		cfg.API.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Lock.RedisAddr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Events.Brokers = splitList(v)
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the stats timezone.
func (c Config) Location() (*time.Location, error) {
	switch c.Stats.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Stats.Timezone)
	if err != nil {
		return nil, fmt.Errorf("stats.timezone: %w", err)
	}
	return loc, nil
}

// SaveConfig writes the config to ~/.lifeio/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(lifeioHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// lifeioHome returns the LifeIO data directory.
func lifeioHome() string {
	if env := os.Getenv("LIFEIO_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lifeio")
}

// Home is exported for use by other packages.
func Home() string {
	return lifeioHome()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

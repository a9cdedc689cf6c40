// Package config loads process configuration from environment variables
// with sensible defaults, so both the CLI and the server can run with zero
// setup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
	SitesFile string // optional YAML override for the site descriptors
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type SessionConfig struct {
	PageBudget   int
	WaitCeiling  time.Duration
	PollInterval time.Duration
	ScrollSteps  int
	ScrollPause  time.Duration
	SettleDelay  time.Duration
	SnapshotDir  string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	Locale         string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getIntOrDefault("SERVER_PORT", 8080),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			PageBudget:   getIntOrDefault("SESSION_PAGE_BUDGET", 2),
			WaitCeiling:  getDurationOrDefault("SESSION_WAIT_CEILING", 300*time.Second),
			PollInterval: getDurationOrDefault("SESSION_POLL_INTERVAL", 2*time.Second),
			ScrollSteps:  getIntOrDefault("SESSION_SCROLL_STEPS", 6),
			ScrollPause:  getDurationOrDefault("SESSION_SCROLL_PAUSE", 600*time.Millisecond),
			SettleDelay:  getDurationOrDefault("SESSION_SETTLE_DELAY", 1200*time.Millisecond),
			SnapshotDir:  getEnvOrDefault("SESSION_SNAPSHOT_DIR", "."),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", false),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 60*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-IN,en;q=0.9"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-IN"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			Name:     getEnvOrDefault("DB_NAME", "shopcrawl"),
			MaxConns: int32(getIntOrDefault("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
		SitesFile: getEnvOrDefault("SITES_CONFIG", ""),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Session.PageBudget < 1 {
		return fmt.Errorf("SESSION_PAGE_BUDGET must be at least 1")
	}
	if c.Session.PollInterval <= 0 {
		return fmt.Errorf("SESSION_POLL_INTERVAL must be positive")
	}
	if c.Session.WaitCeiling < c.Session.PollInterval {
		return fmt.Errorf("SESSION_WAIT_CEILING cannot be shorter than SESSION_POLL_INTERVAL")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT out of range")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

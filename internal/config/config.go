package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendSurreal  = "surreal"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Postgres  PostgresConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	// BaseURL prefixes hypermedia links. Empty means derive from the request.
	BaseURL string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// StoreConfig selects the user store implementation
type StoreConfig struct {
	Backend string
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	URL      string
	MaxConns int
}

// CacheConfig holds Redis cache settings
type CacheConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RateLimitConfig holds per-client rate limit settings
type RateLimitConfig struct {
	Rate   int
	Window time.Duration
	Burst  int
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			BaseURL:        strings.TrimRight(getEnv("API_BASE_URL", ""), "/"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", BackendSurreal)),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "ead"),
			Database:  getEnv("DB_DATABASE", "authuser"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Postgres: PostgresConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: getIntEnv("DATABASE_MAX_CONNS", 10),
		},
		Cache: CacheConfig{
			Enabled:  getBoolEnv("CACHE_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			TTL:      getDurationEnv("CACHE_TTL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Rate:   getIntEnv("RATE_LIMIT_RATE", 100),
			Window: getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			Burst:  getIntEnv("RATE_LIMIT_BURST", 20),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("METRICS_ENABLED", true),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Validate reports every invalid setting at once, joined with errors.Join
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	c.validateServer(fail)
	c.validateStore(fail)

	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			fail("REDIS_ADDR is required when CACHE_ENABLED is true")
		}
		if c.Cache.TTL <= 0 {
			fail("CACHE_TTL must be positive")
		}
	}

	if c.RateLimit.Rate <= 0 {
		fail("RATE_LIMIT_RATE must be positive")
	}
	if c.RateLimit.Window <= 0 {
		fail("RATE_LIMIT_WINDOW must be positive")
	}
	if c.RateLimit.Burst < 0 {
		fail("RATE_LIMIT_BURST must not be negative")
	}

	return errors.Join(errs...)
}

func (c *Config) validateServer(fail func(string, ...any)) {
	if c.Server.Port == "" {
		fail("SERVER_PORT is required")
	}
	switch c.Server.Env {
	case "development", "production", "test":
	default:
		fail("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env)
	}
	if len(c.Server.AllowedOrigins) == 0 {
		fail("CORS_ALLOWED_ORIGINS must have at least one origin")
	}
	if c.Server.BaseURL != "" {
		if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			fail("API_BASE_URL must be an absolute URL, got '%s'", c.Server.BaseURL)
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		fail("LOG_LEVEL must be 'debug', 'info', 'warn', or 'error', got '%s'", c.Log.Level)
	}
}

func (c *Config) validateStore(fail func(string, ...any)) {
	switch c.Store.Backend {
	case BackendSurreal:
		required := []struct{ key, value string }{
			{"DB_HOST", c.Database.Host},
			{"DB_PORT", c.Database.Port},
			{"DB_NAMESPACE", c.Database.Namespace},
			{"DB_DATABASE", c.Database.Database},
		}
		for _, r := range required {
			if r.value == "" {
				fail("%s is required when STORE_BACKEND is surreal", r.key)
			}
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			fail("DATABASE_URL is required when STORE_BACKEND is postgres")
		}
		if c.Postgres.MaxConns <= 0 {
			fail("DATABASE_MAX_CONNS must be positive")
		}
	case BackendMemory:
		if c.IsProduction() {
			fail("STORE_BACKEND memory is not allowed in production")
		}
	default:
		fail("STORE_BACKEND must be 'surreal', 'postgres', or 'memory', got '%s'", c.Store.Backend)
	}
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

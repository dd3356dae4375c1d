package service

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"

	defaultSessionSecret = "development-secret-change-me-0000"
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string
	DBPath      string

	API struct {
		URL         string
		ProxyTarget string
		Timeout     time.Duration
	}

	Session struct {
		Secret  string
		Backend string
		MaxAge  int
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Upload struct {
		MaxSize int64
	}
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	} else if err == nil {
		slog.Info("loaded environment from .env")
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8000"),
		DBPath:      getEnv("DB_PATH", "./db/profiledesk.db"),
	}

	// Remote API
	config.API.URL = getEnv("API_URL", "")
	config.API.ProxyTarget = getEnv("API_PROXY_TARGET", "http://localhost:3000")
	config.API.Timeout = getDuration("API_TIMEOUT", 30*time.Second)

	// Sessions
	config.Session.Secret = getEnv("SESSION_SECRET", defaultSessionSecret)
	config.Session.Backend = strings.ToLower(getEnv("SESSION_BACKEND", BackendSQLite))
	config.Session.MaxAge = getInt("SESSION_MAX_AGE", 7*24*60*60)

	// Redis
	config.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	config.Redis.Password = getEnv("REDIS_PASSWORD", "")
	config.Redis.DB = getInt("REDIS_DB", 0)

	// Upload
	config.Upload.MaxSize = int64(getInt("UPLOAD_MAX_SIZE", 10<<20)) // 10MB default

	return config, nil
}

// IsDevelopment reports whether the browser reaches the API through this
// server's own /api proxy
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// SessionMaxAge is the session lifetime as a duration
func (c *Config) SessionMaxAge() time.Duration {
	return time.Duration(c.Session.MaxAge) * time.Second
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var err error

	switch c.Session.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		err = multierr.Append(err, fmt.Errorf("SESSION_BACKEND must be one of sqlite, redis, memory; got %q", c.Session.Backend))
	}

	if c.Session.MaxAge <= 0 {
		err = multierr.Append(err, errors.New("SESSION_MAX_AGE must be positive"))
	}
	if len(c.Session.Secret) < 32 {
		err = multierr.Append(err, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}
	if c.API.Timeout <= 0 {
		err = multierr.Append(err, errors.New("API_TIMEOUT must be positive"))
	}

	if !c.IsDevelopment() {
		if strings.TrimSpace(c.API.URL) == "" {
			err = multierr.Append(err, errors.New("API_URL is required outside development"))
		}
		if c.Session.Secret == defaultSessionSecret {
			err = multierr.Append(err, errors.New("SESSION_SECRET must be set outside development"))
		}
	}

	return err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return d
}

// Package config holds process configuration loaded from the environment
// and the fixed classifier weights.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application's runtime configuration.
type Config struct {
	Env      string
	HTTPAddr string

	Database struct {
		Host     string
		User     string
		Password string
		Name     string
		Port     string
		SSLMode  string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	JWTSecret        string
	TelegramBotToken string
	LexiconPath      string
	DefaultLang      string
	ClassifyDelay    time.Duration
	EntityCacheTTL   time.Duration
	// StrictTransitions forbids reopening resolved or rejected reports.
	StrictTransitions bool
}

// Load reads an optional .env file and then the process environment.
// A missing .env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", f, err)
			}
		}
	}

	cfg := &Config{
		Env:              getenv("APP_ENV", "production"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		JWTSecret:        getenv("JWT_SECRET", ""),
		TelegramBotToken: getenv("TELEGRAM_BOT_TOKEN", ""),
		LexiconPath:      getenv("LEXICON_PATH", ""),
		DefaultLang:      getenv("DEFAULT_LANG", "es"),
	}

	cfg.Database.Host = getenv("DB_HOST", "localhost")
	cfg.Database.User = getenv("DB_USER", "user")
	cfg.Database.Password = getenv("DB_PASSWORD", "password")
	cfg.Database.Name = getenv("DB_NAME", "reportesdb")
	cfg.Database.Port = getenv("DB_PORT", "5432")
	cfg.Database.SSLMode = getenv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getenv("REDIS_ADDR", "")
	cfg.Redis.Password = getenv("REDIS_PASSWORD", "")

	var err error
	if cfg.Redis.DB, err = strconv.Atoi(getenv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.ClassifyDelay, err = time.ParseDuration(getenv("CLASSIFY_DELAY", "0s")); err != nil {
		return nil, fmt.Errorf("invalid CLASSIFY_DELAY: %w", err)
	}
	if cfg.EntityCacheTTL, err = time.ParseDuration(getenv("ENTITY_CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("invalid ENTITY_CACHE_TTL: %w", err)
	}

	if cfg.StrictTransitions, err = strconv.ParseBool(getenv("STRICT_TRANSITIONS", "false")); err != nil {
		return nil, fmt.Errorf("invalid STRICT_TRANSITIONS: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

// DSN returns the Postgres connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Database.Host,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.Port,
		c.Database.SSLMode,
	)
}

// IsDevelopment reports whether APP_ENV selects development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

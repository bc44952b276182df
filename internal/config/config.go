package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration for the ledger service.
type Config struct {
	Env            string `env:"APP_ENV" envDefault:"dev"`
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	SeedSampleData bool   `env:"SEED_SAMPLE_DATA" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RateLimitEnabled  bool    `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RateLimitCapacity int     `env:"RATE_LIMIT_CAPACITY" envDefault:"50"`
	RateLimitRefill   float64 `env:"RATE_LIMIT_REFILL_PER_SEC" envDefault:"20"`

	FeedEnabled bool   `env:"FEED_ENABLED" envDefault:"false"`
	FeedKey     string `env:"FEED_KEY" envDefault:"ledger:feed"`
	FeedMaxLen  int64  `env:"FEED_MAX_LEN" envDefault:"100"`
}

// Load reads configuration from environment variables with defaults suited
// to local development.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// UsesRedis reports whether any component needs a Redis connection.
func (c Config) UsesRedis() bool {
	return c.RateLimitEnabled || c.FeedEnabled
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
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

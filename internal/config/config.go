// Package config reads the engine's settings from the environment, after
// loading an optional .env file.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds every runtime setting. Zero values mean "not configured".
type Config struct {
	Port string

	// Data sources. BackendURL takes precedence over DatabaseURL; with
	// neither set the in-memory source is used.
	BackendURL   string
	BackendToken string
	DatabaseURL  string
	RedisURL     string
	CacheTTL     time.Duration

	// JWTSecret enables bearer verification on portfolio routes.
	JWTSecret   string
	CORSOrigins []string

	RankingConcurrency  int
	RankingFetchTimeout time.Duration
	InitialBalance      decimal.Decimal

	AlertMaxWeight      decimal.Decimal
	AlertMaxLossPercent decimal.Decimal
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		BackendURL:   getEnv("BACKEND_URL", ""),
		BackendToken: getEnv("BACKEND_TOKEN", ""),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		CacheTTL:     getEnvAsDuration("CACHE_TTL", 30*time.Second),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),

		RankingConcurrency:  getEnvAsInt("RANKING_CONCURRENCY", 0),
		RankingFetchTimeout: getEnvAsDuration("RANKING_FETCH_TIMEOUT", 5*time.Second),
		InitialBalance:      getEnvAsDecimal("INITIAL_BALANCE", decimal.NewFromInt(50000)),

		AlertMaxWeight:      getEnvAsDecimal("ALERT_MAX_WEIGHT", decimal.NewFromInt(40)),
		AlertMaxLossPercent: getEnvAsDecimal("ALERT_MAX_LOSS_PERCENT", decimal.NewFromInt(20)),
	}
}

// AuthEnabled reports whether portfolio routes require a bearer token.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return fallback
	}
	val, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		slog.Warn("invalid integer in config, using default", "key", key, "value", valueStr, "default", fallback)
		return fallback
	}
	return val
}

// getEnvAsDuration accepts Go durations ("5s") or bare seconds ("5").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	valueStr = strings.TrimSpace(valueStr)
	if !exists || valueStr == "" {
		return fallback
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	slog.Warn("invalid duration in config, using default", "key", key, "value", valueStr, "default", fallback)
	return fallback
}

func getEnvAsDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return fallback
	}
	val, err := decimal.NewFromString(strings.TrimSpace(valueStr))
	if err != nil {
		slog.Warn("invalid decimal in config, using default", "key", key, "value", valueStr, "default", fallback.String())
		return fallback
	}
	return val
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

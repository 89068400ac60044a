package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var allKeys = []string{
	"PORT", "BACKEND_URL", "BACKEND_TOKEN", "DATABASE_URL", "REDIS_URL", "CACHE_TTL",
	"JWT_SECRET", "CORS_ORIGINS", "RANKING_CONCURRENCY", "RANKING_FETCH_TIMEOUT",
	"INITIAL_BALANCE", "ALERT_MAX_WEIGHT", "ALERT_MAX_LOSS_PERCENT",
}

// clearEnv blanks every key so the host environment can't leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	c := FromEnv()

	if c.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", c.Port)
	}
	if c.CacheTTL != 30*time.Second {
		t.Errorf("expected 30s cache TTL, got %s", c.CacheTTL)
	}
	if !c.InitialBalance.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected initial balance 50000, got %s", c.InitialBalance)
	}
	if c.RankingConcurrency != 0 || c.RankingFetchTimeout != 5*time.Second {
		t.Errorf("unexpected ranking defaults: %d %s", c.RankingConcurrency, c.RankingFetchTimeout)
	}
	if len(c.CORSOrigins) != 1 || c.CORSOrigins[0] != "*" {
		t.Errorf("expected wildcard CORS default, got %v", c.CORSOrigins)
	}
	if c.AuthEnabled() {
		t.Error("auth should be disabled without JWT_SECRET")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND_URL", "http://backend:3000/api")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("RANKING_FETCH_TIMEOUT", "3")
	t.Setenv("RANKING_CONCURRENCY", "4")
	t.Setenv("INITIAL_BALANCE", "100000.50")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://dash.example.com ,")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ALERT_MAX_WEIGHT", "0")

	c := FromEnv()

	if c.Port != "9090" || c.BackendURL != "http://backend:3000/api" {
		t.Errorf("unexpected string settings: %+v", c)
	}
	if c.CacheTTL != 2*time.Minute {
		t.Errorf("expected 2m, got %s", c.CacheTTL)
	}
	if c.RankingFetchTimeout != 3*time.Second {
		t.Errorf("bare seconds should parse, got %s", c.RankingFetchTimeout)
	}
	if c.RankingConcurrency != 4 {
		t.Errorf("expected 4, got %d", c.RankingConcurrency)
	}
	if !c.InitialBalance.Equal(decimal.RequireFromString("100000.50")) {
		t.Errorf("unexpected initial balance %s", c.InitialBalance)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://dash.example.com" {
		t.Errorf("unexpected CORS origins %v", c.CORSOrigins)
	}
	if !c.AuthEnabled() {
		t.Error("auth should be enabled with JWT_SECRET")
	}
	if !c.AlertMaxWeight.IsZero() {
		t.Errorf("explicit zero should disable the rule, got %s", c.AlertMaxWeight)
	}
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RANKING_CONCURRENCY", "many")
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("INITIAL_BALANCE", "lots")

	c := FromEnv()
	if c.RankingConcurrency != 0 {
		t.Errorf("expected fallback 0, got %d", c.RankingConcurrency)
	}
	if c.CacheTTL != 30*time.Second {
		t.Errorf("expected fallback 30s, got %s", c.CacheTTL)
	}
	if !c.InitialBalance.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected fallback 50000, got %s", c.InitialBalance)
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("BACKEND_TOKEN")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BACKEND_TOKEN=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Chdir(wd)
		os.Unsetenv("BACKEND_TOKEN")
	})

	c := Load()
	if c.BackendToken != "from-dotenv" {
		t.Errorf("expected token from .env, got %q", c.BackendToken)
	}
}

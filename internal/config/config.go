// Package config reads the portal's settings from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
)

const envPrefix = "GYM_"

// Config holds every runtime setting. It is loaded once in main.
type Config struct {
	Addr     string
	DBPath   string
	Env      string
	LogLevel slog.Level
	BaseURL  string

	CSRFKey        []byte
	CookieHashKey  []byte
	CookieBlockKey []byte

	AdminEmail    string
	AdminPassword string

	ResendKey  string
	ResendFrom string
	ReplyTo    string

	SlowQuery   time.Duration
	SlowRequest time.Duration
	// RateLimit is the number of auth form posts allowed per client IP per minute.
	RateLimit int
}

// IsProduction reports whether GYM_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (when present) into the process environment and builds a Config from it.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups.
// PRE: getenv is non-nil
// POST: In production every secret is set explicitly; elsewhere missing keys are generated per process
func FromEnv(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(envPrefix + key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Addr:          env("ADDR", ":8080"),
		DBPath:        env("DB_PATH", "gymportal.db"),
		Env:           env("ENV", "development"),
		BaseURL:       strings.TrimRight(env("BASE_URL", "http://localhost:8080"), "/"),
		AdminEmail:    env("ADMIN_EMAIL", ""),
		AdminPassword: env("ADMIN_PASSWORD", ""),
		ResendKey:     env("RESEND_KEY", ""),
		ResendFrom:    env("RESEND_FROM", "Gym Portal <noreply@gymportal.local>"),
		ReplyTo:       env("REPLY_TO", ""),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("%sLOG_LEVEL: %w", envPrefix, err)
	}

	var err error
	if cfg.SlowQuery, err = millis(env("SLOW_QUERY_MS", "50")); err != nil {
		return Config{}, fmt.Errorf("%sSLOW_QUERY_MS: %w", envPrefix, err)
	}
	if cfg.SlowRequest, err = millis(env("SLOW_REQUEST_MS", "500")); err != nil {
		return Config{}, fmt.Errorf("%sSLOW_REQUEST_MS: %w", envPrefix, err)
	}
	if cfg.RateLimit, err = strconv.Atoi(env("RATE_LIMIT", "20")); err != nil || cfg.RateLimit < 0 {
		return Config{}, fmt.Errorf("%sRATE_LIMIT must be a non-negative integer", envPrefix)
	}

	keys := []struct {
		name string
		size int
		dst  *[]byte
	}{
		{"CSRF_KEY", 32, &cfg.CSRFKey},
		{"COOKIE_HASH_KEY", 32, &cfg.CookieHashKey},
		{"COOKIE_BLOCK_KEY", 32, &cfg.CookieBlockKey},
	}
	for _, k := range keys {
		raw := env(k.name, "")
		if raw == "" {
			if cfg.IsProduction() {
				return Config{}, fmt.Errorf("%s%s is required in production", envPrefix, k.name)
			}
			// Sessions and remember cookies will not survive a restart.
			*k.dst = securecookie.GenerateRandomKey(k.size)
			continue
		}
		key, err := hex.DecodeString(raw)
		if err != nil || len(key) != k.size {
			return Config{}, fmt.Errorf("%s%s must be %d hex-encoded bytes", envPrefix, k.name, k.size)
		}
		*k.dst = key
	}

	return cfg, nil
}

func millis(s string) (time.Duration, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("want a non-negative number of milliseconds, got %q", s)
	}
	return time.Duration(n) * time.Millisecond, nil
}

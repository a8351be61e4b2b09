// Package config loads server settings from the environment, after merging
// an optional .env file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvProduction is the SHEPHERD_ENV value that enables production checks.
const EnvProduction = "production"

// Configuration errors
var (
	ErrInvalidCSRFKey    = errors.New("SHEPHERD_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrMissingCSRFKey    = errors.New("SHEPHERD_CSRF_KEY is required in production")
	ErrMissingAdminToken = errors.New("SHEPHERD_ADMIN_TOKEN is required in production")
	ErrInvalidTimezone   = errors.New("SHEPHERD_TIMEZONE is not a known IANA zone")
	ErrInvalidNumericEnv = errors.New("numeric setting is not an integer in range")
)

// Config holds every setting the server reads at startup.
type Config struct {
	Addr               string
	DBPath             string
	Env                string
	Location           *time.Location // congregation time zone
	CSRFKey            []byte
	AdminToken         string // bearer token for /api/admin; empty disables the check outside production
	TrustedOrigins     []string
	ResendKey          string // empty selects the noop sender
	EmailFrom          string
	DigestRecipients   []string
	SeedFile           string // YAML catalog seed; empty skips seeding
	SlowQueryMs        int
	SlowRequestMs      int
	BulkConcurrency    int
	RateLimitPerSecond int
	PerfRingSize       int
}

// IsProduction reports whether production checks apply.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load merges envFiles (default ".env") into the process environment without
// overriding variables already set, then reads the configuration.
// A missing env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				slog.Debug("config_env_file_missing", "file", f)
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
		slog.Info("config_env_file_loaded", "file", f)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv reads the configuration through lookup.
// PRE: lookup behaves like os.LookupEnv
// POST: Returns a fully defaulted Config, or the first invalid setting
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := Config{
		Addr:             get("SHEPHERD_ADDR", ":8080"),
		DBPath:           get("SHEPHERD_DB_PATH", "shepherd.db"),
		Env:              get("SHEPHERD_ENV", "development"),
		AdminToken:       get("SHEPHERD_ADMIN_TOKEN", ""),
		TrustedOrigins:   splitList(get("SHEPHERD_TRUSTED_ORIGINS", "")),
		ResendKey:        get("SHEPHERD_RESEND_KEY", ""),
		EmailFrom:        get("SHEPHERD_EMAIL_FROM", "Shepherd <noreply@example.org>"),
		DigestRecipients: splitList(get("SHEPHERD_DIGEST_RECIPIENTS", "")),
		SeedFile:         get("SHEPHERD_SEED_FILE", ""),
	}

	var err error
	tz := get("SHEPHERD_TIMEZONE", "UTC")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, tz)
	}

	ints := []struct {
		key      string
		fallback int
		lower    int
		dst      *int
	}{
		{"SHEPHERD_SLOW_QUERY_MS", 50, 0, &cfg.SlowQueryMs},
		{"SHEPHERD_SLOW_REQUEST_MS", 500, 0, &cfg.SlowRequestMs},
		{"SHEPHERD_BULK_CONCURRENCY", 8, 1, &cfg.BulkConcurrency},
		{"SHEPHERD_RATE_LIMIT", 10, 1, &cfg.RateLimitPerSecond},
		{"SHEPHERD_PERF_RING_SIZE", 10000, 1, &cfg.PerfRingSize},
	}
	for _, s := range ints {
		raw := get(s.key, strconv.Itoa(s.fallback))
		n, err := strconv.Atoi(raw)
		if err != nil || n < s.lower {
			return Config{}, fmt.Errorf("%w: %s=%q", ErrInvalidNumericEnv, s.key, raw)
		}
		*s.dst = n
	}

	if cfg.CSRFKey, err = csrfKey(get("SHEPHERD_CSRF_KEY", ""), cfg.IsProduction()); err != nil {
		return Config{}, err
	}
	if cfg.IsProduction() && cfg.AdminToken == "" {
		return Config{}, ErrMissingAdminToken
	}
	return cfg, nil
}

// csrfKey decodes a hex key. Outside production an empty key yields a random
// one, so CSRF tokens do not survive a restart.
func csrfKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, ErrInvalidCSRFKey
		}
		return key, nil
	}
	if production {
		return nil, ErrMissingCSRFKey
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("config_random_csrf_key", "hint", "set SHEPHERD_CSRF_KEY for stable tokens")
	return key, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// TestFromEnv_Defaults verifies development defaults.
func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "shepherd.db" || cfg.IsProduction() {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Location.String() != "UTC" {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
	if len(cfg.CSRFKey) != 32 {
		t.Errorf("CSRFKey len = %d, want a random 32-byte key", len(cfg.CSRFKey))
	}
	if cfg.SlowQueryMs != 50 || cfg.BulkConcurrency != 8 || cfg.RateLimitPerSecond != 10 {
		t.Errorf("numeric defaults = %d/%d/%d", cfg.SlowQueryMs, cfg.BulkConcurrency, cfg.RateLimitPerSecond)
	}
}

// TestFromEnv_Overrides verifies variables are parsed and lists split.
func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"SHEPHERD_ADDR":              ":9090",
		"SHEPHERD_TIMEZONE":          "UTC",
		"SHEPHERD_CSRF_KEY":          strings.Repeat("ab", 32),
		"SHEPHERD_DIGEST_RECIPIENTS": "pastor@example.org, , elders@example.org",
		"SHEPHERD_BULK_CONCURRENCY":  "3",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.BulkConcurrency != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.CSRFKey[0] != 0xab {
		t.Errorf("CSRFKey not decoded from hex")
	}
	if len(cfg.DigestRecipients) != 2 || cfg.DigestRecipients[1] != "elders@example.org" {
		t.Errorf("DigestRecipients = %v", cfg.DigestRecipients)
	}
}

// TestFromEnv_Invalid verifies each invalid setting is reported.
func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"bad timezone", map[string]string{"SHEPHERD_TIMEZONE": "Mars/Olympus"}, ErrInvalidTimezone},
		{"bad csrf key", map[string]string{"SHEPHERD_CSRF_KEY": "zz"}, ErrInvalidCSRFKey},
		{"negative number", map[string]string{"SHEPHERD_SLOW_QUERY_MS": "-1"}, ErrInvalidNumericEnv},
		{"zero rate limit", map[string]string{"SHEPHERD_RATE_LIMIT": "0"}, ErrInvalidNumericEnv},
		{"production without csrf key", map[string]string{"SHEPHERD_ENV": "production", "SHEPHERD_ADMIN_TOKEN": "t"}, ErrMissingCSRFKey},
		{"production without admin token", map[string]string{"SHEPHERD_ENV": "production", "SHEPHERD_CSRF_KEY": strings.Repeat("00", 32)}, ErrMissingAdminToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromEnv(lookupFrom(tt.env)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestLoad_EnvFile verifies .env values apply without overriding the process environment.
func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SHEPHERD_DB_PATH=from-file.db\nSHEPHERD_ADDR=:7000\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("SHEPHERD_ADDR", ":6000")
	t.Setenv("SHEPHERD_DB_PATH", "")
	os.Unsetenv("SHEPHERD_DB_PATH")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "from-file.db" {
		t.Errorf("DBPath = %q, want from-file.db", cfg.DBPath)
	}
	if cfg.Addr != ":6000" {
		t.Errorf("Addr = %q, want the process value :6000", cfg.Addr)
	}
}

// TestLoad_MissingFile verifies a missing env file falls back to the environment.
func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Load with missing file: %v", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CALENDAR_AUTH_JWTSECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("expected secret from env, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.TokenTTL() != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", cfg.TokenTTL())
	}
	if cfg.URLExpiry() != 15*time.Minute {
		t.Fatalf("expected 15m url expiry, got %s", cfg.URLExpiry())
	}
	if cfg.ExportsEnabled() {
		t.Fatal("exports must be disabled without a bucket")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CALENDAR_AUTH_JWTSECRET", "s3cret")
	t.Setenv("CALENDAR_AUTH_TOKENTTLMINUTES", "30")
	t.Setenv("CALENDAR_STORAGE_BUCKET", "exports")
	t.Setenv("CALENDAR_DATABASE_PATH", "/tmp/cal.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TokenTTL() != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %s", cfg.TokenTTL())
	}
	if !cfg.ExportsEnabled() || cfg.Storage.Bucket != "exports" {
		t.Fatalf("expected bucket exports, got %q", cfg.Storage.Bucket)
	}
	if cfg.Database.Path != "/tmp/cal.db" {
		t.Fatalf("unexpected database path %q", cfg.Database.Path)
	}
}

func TestValidate(t *testing.T) {
	var cfg Config
	cfg.Database.Path = "data/calendar.db"
	cfg.Auth.TokenTTLMinutes = 60

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing secret to fail")
	}

	cfg.Auth.JWTSecret = "s3cret"
	cfg.Auth.TokenTTLMinutes = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected zero ttl to fail")
	}

	cfg.Auth.TokenTTLMinutes = 5
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	t.Setenv("CALENDAR_TEST_FRESH", "")
	os.Unsetenv("CALENDAR_TEST_FRESH")
	t.Setenv("CALENDAR_TEST_SET", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n\nexport CALENDAR_TEST_FRESH=\"from-file\"\nCALENDAR_TEST_SET=from-file\nbroken-line\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	loadDotEnv(path)

	if got := os.Getenv("CALENDAR_TEST_FRESH"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("CALENDAR_TEST_SET"); got != "from-env" {
		t.Fatalf("expected env to win, got %q", got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir changes the working directory for the test and restores it on
// cleanup; testing.T.Chdir is unavailable before Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "nonexistent")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "release" || cfg.Port != 8080 {
		t.Errorf("defaults = mode %q port %d, want release 8080", cfg.Mode, cfg.Port)
	}
	if cfg.SendBuffer != 32 || cfg.ReadLimit != 32768 {
		t.Errorf("buffer defaults = %d/%d, want 32/32768", cfg.SendBuffer, cfg.ReadLimit)
	}
	if cfg.PingPeriod != 54*time.Second || cfg.WriteTimeout != 5*time.Second {
		t.Errorf("timing defaults = %v/%v, want 54s/5s", cfg.PingPeriod, cfg.WriteTimeout)
	}
	if cfg.MessageRateLimit != 20 || cfg.MessageRateInterval != 10*time.Second {
		t.Errorf("rate defaults = %d/%v, want 20/10s", cfg.MessageRateLimit, cfg.MessageRateInterval)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_ENV", "test")

	yaml := []byte("mode: debug\nport: 9000\nstatic_path: ./public\nsecret: s3cret\nping_period: 30s\nmessage_rate_limit: 5\n")
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "debug" || cfg.Port != 9000 || cfg.StaticPath != "./public" {
		t.Errorf("cfg = %+v, want file values", cfg)
	}
	if cfg.Secret != "s3cret" {
		t.Errorf("secret = %q, want s3cret", cfg.Secret)
	}
	if cfg.PingPeriod != 30*time.Second {
		t.Errorf("ping_period = %v, want 30s", cfg.PingPeriod)
	}
	if cfg.MessageRateLimit != 5 {
		t.Errorf("message_rate_limit = %d, want 5", cfg.MessageRateLimit)
	}
	// values absent from the file keep their defaults
	if cfg.SendBuffer != 32 {
		t.Errorf("send_buffer = %d, want default 32", cfg.SendBuffer)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Gateway.RingCapacity != 50 {
		t.Errorf("expected ring capacity 50, got %d", cfg.Gateway.RingCapacity)
	}
	if cfg.Gateway.FillThreshold != 10 {
		t.Errorf("expected fill threshold 10, got %d", cfg.Gateway.FillThreshold)
	}
	if cfg.STT.SampleRate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", cfg.STT.SampleRate)
	}
	if cfg.Speaker.Threshold != 0.75 {
		t.Errorf("expected speaker threshold 0.75, got %f", cfg.Speaker.Threshold)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
gateway:
  ring_capacity: 100
  fill_threshold: 25
jwt:
  secret: test-secret
  expires_in: 30m
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Gateway.RingCapacity != 100 || cfg.Gateway.FillThreshold != 25 {
		t.Errorf("gateway knobs not applied: %+v", cfg.Gateway)
	}
	if cfg.JWT.ExpiresIn != 30*time.Minute {
		t.Errorf("expected 30m expiry, got %s", cfg.JWT.ExpiresIn)
	}
	// untouched keys keep defaults
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("redis default lost: %s", cfg.Redis.URL)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Errorf("expected env secret, got %q", cfg.JWT.Secret)
	}
	if cfg.Redis.URL != "redis://cache:6379/1" {
		t.Errorf("expected env redis url, got %q", cfg.Redis.URL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"empty jwt secret", func(c *Config) { c.JWT.Secret = "" }},
		{"zero ring capacity", func(c *Config) { c.Gateway.RingCapacity = 0 }},
		{"threshold above capacity", func(c *Config) { c.Gateway.FillThreshold = 51 }},
		{"bad sample rate", func(c *Config) { c.STT.SampleRate = 4000 }},
		{"zero stt workers", func(c *Config) { c.STT.MaxConcurrent = 0 }},
		{"speaker threshold above one", func(c *Config) { c.Speaker.Threshold = 1.5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

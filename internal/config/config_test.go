package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090
  refresh_interval: 2m

thresholds:
  buy_below: -0.015
  sell_above: 0.02

normalizer:
  dedupe_policy: keep-first

storage:
  archive:
    enabled: true
    type: localfs
    path: "/tmp/goldgap/archive"
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.RefreshInterval != 2*time.Minute {
		t.Errorf("expected 2m refresh, got %s", cfg.Server.RefreshInterval)
	}
	if cfg.Thresholds.BuyBelow != -0.015 {
		t.Errorf("expected buy_below -0.015, got %v", cfg.Thresholds.BuyBelow)
	}
	if cfg.Normalizer.DedupePolicy != "keep-first" {
		t.Errorf("expected keep-first, got %s", cfg.Normalizer.DedupePolicy)
	}
	if cfg.Storage.Archive.Path != "/tmp/goldgap/archive" {
		t.Errorf("expected archive path, got %s", cfg.Storage.Archive.Path)
	}

	// Untouched sections keep their defaults.
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("expected default metrics path, got %s", cfg.Metrics.Path)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Thresholds.BuyBelow != -0.01 || cfg.Thresholds.SellAbove != 0.01 {
		t.Errorf("expected ±1%% default thresholds, got %+v", cfg.Thresholds)
	}
	if cfg.Normalizer.DedupePolicy != "keep-last" {
		t.Errorf("expected keep-last default, got %s", cfg.Normalizer.DedupePolicy)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func(mut func(*Config)) *Config {
		cfg := Defaults()
		mut(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"defaults", Defaults(), false},
		{"invalid port - zero", valid(func(c *Config) { c.Server.Port = 0 }), true},
		{"invalid port - too high", valid(func(c *Config) { c.Server.Port = 70000 }), true},
		{"inverted thresholds", valid(func(c *Config) {
			c.Thresholds.BuyBelow = 0.02
			c.Thresholds.SellAbove = 0.01
		}), true},
		{"unknown dedupe policy", valid(func(c *Config) { c.Normalizer.DedupePolicy = "keep-random" }), true},
		{"unknown archive type", valid(func(c *Config) { c.Storage.Archive.Type = "ftp" }), true},
		{"s3 without bucket", valid(func(c *Config) {
			c.Storage.Archive.Enabled = true
			c.Storage.Archive.Type = "s3"
		}), true},
		{"s3 with bucket", valid(func(c *Config) {
			c.Storage.Archive.Enabled = true
			c.Storage.Archive.Type = "s3"
			c.Storage.Archive.S3.Bucket = "goldgap-runs"
		}), false},
		{"negative refresh interval", valid(func(c *Config) { c.Server.RefreshInterval = -time.Second }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("GOLDGAP_TEST_SECRET", "sekrit")

	content := []byte(`
storage:
  archive:
    type: s3
    s3:
      bucket: goldgap-runs
      secret_key: "${GOLDGAP_TEST_SECRET}"
`)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Archive.S3.SecretKey != "sekrit" {
		t.Errorf("env var not expanded, got %q", cfg.Storage.Archive.S3.SecretKey)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "service:\n  name: signal-engine\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.Port != defaultServicePort {
		t.Errorf("port = %d, want default %d", cfg.Service.Port, defaultServicePort)
	}
	if cfg.Service.Pipeline != defaultPipeline {
		t.Errorf("pipeline = %q, want %q", cfg.Service.Pipeline, defaultPipeline)
	}
	if cfg.Ranking.LookbackDays != defaultLookbackDays {
		t.Errorf("lookback = %d, want %d", cfg.Ranking.LookbackDays, defaultLookbackDays)
	}
	if cfg.Ranking.RecencyWindow != defaultRecencyDays*hoursPerDay*time.Hour {
		t.Errorf("recency window = %v", cfg.Ranking.RecencyWindow)
	}
	if cfg.Database.SSLMode != defaultDBSSLMode {
		t.Errorf("sslmode = %q", cfg.Database.SSLMode)
	}
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 9000
  pipeline: uk_signals
  concurrency: 4
ranking:
  lookback_days: 7
  recency_window: 72h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.Port != 9000 || cfg.Service.Pipeline != "uk_signals" || cfg.Service.Concurrency != 4 {
		t.Errorf("service = %+v", cfg.Service)
	}
	if cfg.Ranking.LookbackDays != 7 || cfg.Ranking.RecencyWindow != 72*time.Hour {
		t.Errorf("ranking = %+v", cfg.Ranking)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "service:\n  port: 9000\n")

	t.Setenv("SIGNAL_ENGINE_PORT", "9100")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("APP_DEBUG", "yes")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", cfg.Service.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("db host = %q", cfg.Database.Host)
	}
	if !cfg.Service.Debug {
		t.Error("expected debug true from APP_DEBUG=yes")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
universe:
  equities: [AAPL]
clickhouse:
  host: localhost
kafka:
  brokers: [localhost:9092]
  topic: signalpull.actions
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level, got %q", cfg.Logging.Level)
	}
	if cfg.Pipeline.Bars != 60 || cfg.Pipeline.Parallel != 8 {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.Cron != "0 7 * * *" {
		t.Fatalf("unexpected cron default %q", cfg.Pipeline.Cron)
	}
	if cfg.Pipeline.RunTimeout != 10*time.Minute {
		t.Fatalf("unexpected run timeout %v", cfg.Pipeline.RunTimeout)
	}
	if cfg.Vendors.Timeout != 15*time.Second {
		t.Fatalf("unexpected vendor timeout %v", cfg.Vendors.Timeout)
	}
}

func TestLoadRejectsEmptyUniverse(t *testing.T) {
	body := `
environment: test
clickhouse:
  host: localhost
kafka:
  brokers: [localhost:9092]
  topic: t
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsMissingKafkaTopic(t *testing.T) {
	body := `
environment: test
universe:
  crypto: [BTCUSDT]
clickhouse:
  host: localhost
kafka:
  brokers: [localhost:9092]
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("CRYPTO_SYMBOLS", "BTCUSDT,ETHUSDT")
	t.Setenv("PIPELINE_CRON", "30 6 * * 1-5")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Universe.Crypto) != 2 || cfg.Universe.Crypto[0] != "BTCUSDT" {
		t.Fatalf("unexpected crypto universe %v", cfg.Universe.Crypto)
	}
	if cfg.Pipeline.Cron != "30 6 * * 1-5" {
		t.Fatalf("unexpected cron %q", cfg.Pipeline.Cron)
	}
}

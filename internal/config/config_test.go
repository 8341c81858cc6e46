package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"monitord/internal/domain"
)

const sampleConfig = `
env: prod
server:
  health_port: "9000"
monitoring:
  poll_interval: 120
  cooldown: 600
  escalation_threshold: 5
notifier:
  shared_channel: alerts
  webhooks:
    alerts: https://hooks.test/alerts
    crawler: https://hooks.test/crawler
services:
  - name: blockchain
    url: https://chain.example.test/
    probe: blockchain
    channels: [blockchain]
  - name: crawler
    url: https://crawler.example.test/
    probe: crawler
    interval: 30
    cooldown: 60
    escalation_threshold: 2
    channels: [crawler]
`

func loadFrom(t *testing.T, content string) (*Config, error) {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "local.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	return Load()
}

func TestLoadAppliesDefaultsPerService(t *testing.T) {
	cfg, err := loadFrom(t, sampleConfig)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Env != "prod" {
		t.Errorf("env = %q, want prod", cfg.Env)
	}
	if cfg.Server.HealthPort != "9000" {
		t.Errorf("health_port = %q, want 9000", cfg.Server.HealthPort)
	}

	descriptors := cfg.Descriptors()
	if len(descriptors) != 2 {
		t.Fatalf("descriptors = %d, want 2", len(descriptors))
	}

	chain := descriptors[0]
	if chain.Kind != domain.ProbeKindBlockchain {
		t.Errorf("kind = %s, want blockchain", chain.Kind)
	}
	if chain.Interval != 120*time.Second {
		t.Errorf("interval = %s, want monitoring default 120s", chain.Interval)
	}
	if chain.Cooldown != 600*time.Second {
		t.Errorf("cooldown = %s, want monitoring default 600s", chain.Cooldown)
	}
	if chain.EscalationThreshold != 5 {
		t.Errorf("threshold = %d, want monitoring default 5", chain.EscalationThreshold)
	}
	if chain.Timeout != 10*time.Second {
		t.Errorf("timeout = %s, want built-in default 10s", chain.Timeout)
	}

	crawler := descriptors[1]
	if crawler.Interval != 30*time.Second {
		t.Errorf("interval = %s, want per-service 30s", crawler.Interval)
	}
	if crawler.Cooldown != 60*time.Second {
		t.Errorf("cooldown = %s, want per-service 60s", crawler.Cooldown)
	}
	if crawler.EscalationThreshold != 2 {
		t.Errorf("threshold = %d, want per-service 2", crawler.EscalationThreshold)
	}
}

func TestLoadRejectsEmptyServiceList(t *testing.T) {
	if _, err := loadFrom(t, "env: local\n"); err == nil {
		t.Fatal("expected error when no services are configured")
	}
}

func TestLoadRejectsUnknownProbeKind(t *testing.T) {
	_, err := loadFrom(t, `
services:
  - name: mystery
    url: https://mystery.test/
    probe: carrier-pigeon
`)
	if err == nil {
		t.Fatal("expected error for unknown probe kind")
	}
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	_, err := loadFrom(t, `
services:
  - name: twin
    url: https://a.test/
    probe: crawler
  - name: twin
    url: https://b.test/
    probe: crawler
`)
	if err == nil {
		t.Fatal("expected error for duplicate service names")
	}
}

func TestLoadRejectsMissingURL(t *testing.T) {
	_, err := loadFrom(t, `
services:
  - name: nowhere
    probe: crawler
`)
	if err == nil {
		t.Fatal("expected error for missing url")
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const validConfig = `
app:
  name: fraudstream
rules:
  - type: high_amount
    threshold: 3000
    base_risk_score: 90
  - type: suspicious_merchant
    blocklist: [Unknown_Merchant]
    base_risk_score: 85
  - type: unusual_location
    sentinel: International
    base_risk_score: 80
generator:
  interval: 250ms
`

func TestLoadConfig_Valid(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Rules) != 3 {
		t.Errorf("expected 3 rules, got %d", len(cfg.Rules))
	}
	if cfg.Rules[0].Threshold != 3000 {
		t.Errorf("expected threshold 3000, got %.0f", cfg.Rules[0].Threshold)
	}
	if time.Duration(cfg.Generator.Interval) != 250*time.Millisecond {
		t.Errorf("expected interval 250ms, got %v", time.Duration(cfg.Generator.Interval))
	}
}

func TestLoadConfig_DefaultsApplied(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pipeline.Buffer != 64 {
		t.Errorf("expected default buffer 64, got %d", cfg.Pipeline.Buffer)
	}
	if cfg.API.Port != ":8080" {
		t.Errorf("expected default api port :8080, got %s", cfg.API.Port)
	}
	if time.Duration(cfg.API.ReadTimeout) != 30*time.Second {
		t.Errorf("expected default read timeout 30s, got %v", time.Duration(cfg.API.ReadTimeout))
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("API_PORT", ":9999")
	t.Setenv("NATS_URL", "nats://elsewhere:4222")

	cfg, err := LoadConfig(writeConfig(t, validConfig))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Port != ":9999" {
		t.Errorf("expected env override for api port, got %s", cfg.API.Port)
	}
	if cfg.NATS.URL != "nats://elsewhere:4222" {
		t.Errorf("expected env override for nats url, got %s", cfg.NATS.URL)
	}
}

func TestLoadConfig_NoRules(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "app:\n  name: x\n"))

	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadConfig_BadThreshold(t *testing.T) {
	content := `
rules:
  - type: high_amount
    threshold: 0
    base_risk_score: 90
`
	_, err := LoadConfig(writeConfig(t, content))

	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadConfig_EmptyBlocklist(t *testing.T) {
	content := `
rules:
  - type: suspicious_merchant
    base_risk_score: 85
`
	_, err := LoadConfig(writeConfig(t, content))

	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadConfig_UnknownRuleType(t *testing.T) {
	content := `
rules:
  - type: velocity_check
    base_risk_score: 50
`
	_, err := LoadConfig(writeConfig(t, content))

	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadConfig_BaseRiskScoreOutOfRange(t *testing.T) {
	content := `
rules:
  - type: unusual_location
    sentinel: International
    base_risk_score: 120
`
	_, err := LoadConfig(writeConfig(t, content))

	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadConfig_NATSEnabledWithoutURL(t *testing.T) {
	t.Setenv("NATS_URL", "")
	content := validConfig + `
nats:
  enabled: true
`
	_, err := LoadConfig(writeConfig(t, content))

	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks configuration problems that must abort startup
// before any record is processed.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// Duration lets timeouts be written as "30s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("%w: duration must be a string like \"30s\"", ErrInvalidConfig)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: invalid duration %q", ErrInvalidConfig, s)
	}
	*d = Duration(parsed)
	return nil
}

// Rule type identifiers accepted in the rules section.
const (
	RuleTypeHighAmount         = "high_amount"
	RuleTypeSuspiciousMerchant = "suspicious_merchant"
	RuleTypeUnusualLocation    = "unusual_location"
)

type Config struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
	} `yaml:"app"`

	Pipeline struct {
		// Buffer sizes every channel between pipeline stages.
		Buffer int `yaml:"buffer"`
		// RecentAlerts caps the in-memory ring buffer queried by the API.
		RecentAlerts int `yaml:"recent_alerts"`
		// CriticalScore is the risk score at or above which alerts are
		// pushed to the notifier.
		CriticalScore float64 `yaml:"critical_score"`
	} `yaml:"pipeline"`

	Rules []RuleConfig `yaml:"rules"`

	Generator struct {
		Users            int      `yaml:"users"`
		FraudProbability float64  `yaml:"fraud_probability"`
		Count            int      `yaml:"count"` // 0 means unbounded
		Interval         Duration `yaml:"interval"`
		Seed             int64    `yaml:"seed"`
	} `yaml:"generator"`

	NATS struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
		SigningKey    string `yaml:"signing_key"`
	} `yaml:"nats"`

	API struct {
		Port         string   `yaml:"port"`
		ReadTimeout  Duration `yaml:"read_timeout"`
		WriteTimeout Duration `yaml:"write_timeout"`
	} `yaml:"api"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
}

// RuleConfig parameterizes one registry entry. Which fields are required
// depends on the rule type; BaseRiskScore is the fallback score used for
// fraud types the synthesizer has no dedicated policy for.
type RuleConfig struct {
	Type          string   `yaml:"type"`
	Threshold     float64  `yaml:"threshold,omitempty"`
	Blocklist     []string `yaml:"blocklist,omitempty"`
	Sentinel      string   `yaml:"sentinel,omitempty"`
	BaseRiskScore float64  `yaml:"base_risk_score"`
}

// LoadConfig reads a YAML file, applies environment overrides and
// defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if env := os.Getenv("APP_NAME"); env != "" {
		cfg.App.Name = env
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.App.Env = env
	}
	if env := os.Getenv("NATS_URL"); env != "" {
		cfg.NATS.URL = env
	}
	if env := os.Getenv("NATS_SIGNING_KEY"); env != "" {
		cfg.NATS.SigningKey = env
	}
	if env := os.Getenv("API_PORT"); env != "" {
		cfg.API.Port = env
	}
	if env := os.Getenv("METRICS_ADDR"); env != "" {
		cfg.Metrics.Addr = env
	}
	if env := os.Getenv("GENERATOR_SEED"); env != "" {
		if seed, err := strconv.ParseInt(env, 10, 64); err == nil {
			cfg.Generator.Seed = seed
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "fraudstream"
	}
	if cfg.Pipeline.Buffer == 0 {
		cfg.Pipeline.Buffer = 64
	}
	if cfg.Pipeline.RecentAlerts == 0 {
		cfg.Pipeline.RecentAlerts = 256
	}
	if cfg.Pipeline.CriticalScore == 0 {
		cfg.Pipeline.CriticalScore = 90
	}
	if cfg.Generator.Users == 0 {
		cfg.Generator.Users = 100
	}
	if cfg.Generator.FraudProbability == 0 {
		cfg.Generator.FraudProbability = 0.15
	}
	if cfg.Generator.Interval == 0 {
		cfg.Generator.Interval = Duration(time.Second)
	}
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.ReadTimeout == 0 {
		cfg.API.ReadTimeout = Duration(30 * time.Second)
	}
	if cfg.API.WriteTimeout == 0 {
		cfg.API.WriteTimeout = Duration(30 * time.Second)
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = "alerts"
	}
}

// Validate checks everything that would otherwise fail only after records
// start flowing. All violations wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if len(c.Rules) == 0 {
		return fmt.Errorf("%w: at least one rule must be configured", ErrInvalidConfig)
	}

	for i, rule := range c.Rules {
		if rule.BaseRiskScore < 0 || rule.BaseRiskScore > 100 {
			return fmt.Errorf("%w: rule %d: base_risk_score %.2f outside [0,100]",
				ErrInvalidConfig, i, rule.BaseRiskScore)
		}

		switch rule.Type {
		case RuleTypeHighAmount:
			if rule.Threshold <= 0 {
				return fmt.Errorf("%w: rule %d: high_amount requires a positive threshold",
					ErrInvalidConfig, i)
			}
		case RuleTypeSuspiciousMerchant:
			if len(rule.Blocklist) == 0 {
				return fmt.Errorf("%w: rule %d: suspicious_merchant requires a non-empty blocklist",
					ErrInvalidConfig, i)
			}
		case RuleTypeUnusualLocation:
			if rule.Sentinel == "" {
				return fmt.Errorf("%w: rule %d: unusual_location requires a sentinel location",
					ErrInvalidConfig, i)
			}
		default:
			return fmt.Errorf("%w: rule %d: unknown rule type %q", ErrInvalidConfig, i, rule.Type)
		}
	}

	if c.Pipeline.Buffer < 0 {
		return fmt.Errorf("%w: pipeline buffer must not be negative", ErrInvalidConfig)
	}
	if c.Generator.FraudProbability < 0 || c.Generator.FraudProbability > 1 {
		return fmt.Errorf("%w: fraud_probability %.2f outside [0,1]",
			ErrInvalidConfig, c.Generator.FraudProbability)
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("%w: nats enabled but no url configured", ErrInvalidConfig)
	}

	return nil
}

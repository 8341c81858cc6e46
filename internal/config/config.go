package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"monitord/internal/domain"
)

type Config struct {
	Env        string           `mapstructure:"env"`
	Server     ServerConfig     `mapstructure:"server"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Services   []ServiceConfig  `mapstructure:"services"`
}

type ServerConfig struct {
	HealthPort string `mapstructure:"health_port"`
}

type MonitoringConfig struct {
	PollInterval        int `mapstructure:"poll_interval"`
	Cooldown            int `mapstructure:"cooldown"`
	EscalationThreshold int `mapstructure:"escalation_threshold"`
	ProbeTimeout        int `mapstructure:"probe_timeout"`
}

type NotifierConfig struct {
	SharedChannel string            `mapstructure:"shared_channel"`
	Webhooks      map[string]string `mapstructure:"webhooks"`
	MaxAttempts   int               `mapstructure:"max_attempts"`
	BackoffMs     int               `mapstructure:"backoff_ms"`
	TimeoutSec    int               `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type ServiceConfig struct {
	Name                string   `mapstructure:"name"`
	URL                 string   `mapstructure:"url"`
	Probe               string   `mapstructure:"probe"`
	Interval            int      `mapstructure:"interval"`
	Timeout             int      `mapstructure:"timeout"`
	Cooldown            int      `mapstructure:"cooldown"`
	EscalationThreshold int      `mapstructure:"escalation_threshold"`
	Channels            []string `mapstructure:"channels"`
}

func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("local")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")

	// Server defaults
	v.SetDefault("server.health_port", "8081")

	// Monitoring defaults, applied per service when a descriptor omits them
	v.SetDefault("monitoring.poll_interval", 60)
	v.SetDefault("monitoring.cooldown", 300)
	v.SetDefault("monitoring.escalation_threshold", 3)
	v.SetDefault("monitoring.probe_timeout", 10)

	// Notifier defaults
	v.SetDefault("notifier.shared_channel", "alerts")
	v.SetDefault("notifier.max_attempts", 3)
	v.SetDefault("notifier.backoff_ms", 500)
	v.SetDefault("notifier.timeout", 10)

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "alert-events")
}

func (c *Config) validate() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("configuration must define at least one service")
	}

	seen := make(map[string]bool, len(c.Services))
	for i, svc := range c.Services {
		if svc.Name == "" {
			return fmt.Errorf("service %d is missing name", i)
		}
		if seen[svc.Name] {
			return fmt.Errorf("duplicate service name: %s", svc.Name)
		}
		seen[svc.Name] = true

		if svc.URL == "" {
			return fmt.Errorf("service %s: url is required", svc.Name)
		}
		if !domain.ProbeKind(svc.Probe).Valid() {
			return fmt.Errorf("service %s: unknown probe kind %q", svc.Name, svc.Probe)
		}
	}

	return nil
}

// Descriptors materializes the immutable descriptor list, filling per-service
// gaps from the monitoring defaults.
func (c *Config) Descriptors() []domain.ServiceDescriptor {
	out := make([]domain.ServiceDescriptor, 0, len(c.Services))
	for _, svc := range c.Services {
		d := domain.ServiceDescriptor{
			Name:                svc.Name,
			URL:                 svc.URL,
			Kind:                domain.ProbeKind(svc.Probe),
			Interval:            secondsOr(svc.Interval, c.Monitoring.PollInterval),
			Timeout:             secondsOr(svc.Timeout, c.Monitoring.ProbeTimeout),
			Cooldown:            secondsOr(svc.Cooldown, c.Monitoring.Cooldown),
			EscalationThreshold: svc.EscalationThreshold,
			Channels:            svc.Channels,
		}
		if d.EscalationThreshold <= 0 {
			d.EscalationThreshold = c.Monitoring.EscalationThreshold
		}
		out = append(out, d)
	}
	return out
}

func (c *Config) NotifierTimeout() time.Duration {
	return time.Duration(c.Notifier.TimeoutSec) * time.Second
}

func (c *Config) NotifierBackoff() time.Duration {
	return time.Duration(c.Notifier.BackoffMs) * time.Millisecond
}

func secondsOr(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}

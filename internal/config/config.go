// Package config loads the service configuration from YAML with
// environment variable overrides. A .env file is honored before overrides
// are applied.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/JartiX/Irk-media-monitoring/internal/api"
	"github.com/JartiX/Irk-media-monitoring/internal/cache"
	"github.com/JartiX/Irk-media-monitoring/internal/classifier"
	"github.com/JartiX/Irk-media-monitoring/internal/database"
	"github.com/JartiX/Irk-media-monitoring/internal/fetcher"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
	"github.com/JartiX/Irk-media-monitoring/internal/monitor"
	"github.com/JartiX/Irk-media-monitoring/internal/retry"
)

// Default configuration values.
const (
	defaultDBHost        = "localhost"
	defaultDBPort        = "5432"
	defaultDBUser        = "postgres"
	defaultDBName        = "monitoring"
	defaultDBSSLMode     = "disable"
	defaultLogLevel      = "info"
	defaultAPIAddr       = ":8080"
	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
	defaultRetryMaxDelay = 30 * time.Second
)

// SourceConfig describes one monitored source plus its request pacing.
type SourceConfig struct {
	fetcher.GatewayConfig `yaml:",inline"`

	// RequestsPerSecond paces gateway requests for this source; 0 means
	// unpaced.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// FetchRetryConfig holds the retry knobs exposed to configuration.
type FetchRetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// Config holds all configuration for the monitoring service.
type Config struct {
	Logging     logger.Config            `yaml:"logging"`
	Database    database.Config          `yaml:"database"`
	Cache       cache.Config             `yaml:"cache"`
	Backend     classifier.BackendConfig `yaml:"backend"`
	Monitor     monitor.Config           `yaml:"monitor"`
	API         api.Config               `yaml:"api"`
	FetchRetry  FetchRetryConfig         `yaml:"fetch_retry"`
	Sources     []SourceConfig           `yaml:"sources"`
	RulesetPath string                   `env:"RULESET_PATH" yaml:"ruleset_path"`
	// Schedule is a cron expression; empty means a single run.
	Schedule string `env:"MONITOR_SCHEDULE" yaml:"schedule"`
	// WebhookURL, when set, receives the run summary.
	WebhookURL string `env:"REPORT_WEBHOOK_URL" yaml:"webhook_url"`
}

// Load reads the YAML file at path and applies env overrides. A missing
// file is not an error; the defaults plus environment then fully describe
// the service.
func Load(path string) (*Config, error) {
	// Missing .env is fine; a present but unreadable one is not.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Defaults plus env only.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	setDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = defaultDBHost
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = defaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = defaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = defaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = defaultDBSSLMode
	}
	if cfg.API.Addr == "" {
		cfg.API.Addr = defaultAPIAddr
	}
	if cfg.FetchRetry.MaxAttempts <= 0 {
		cfg.FetchRetry.MaxAttempts = defaultRetryAttempts
	}
	if cfg.FetchRetry.InitialDelay <= 0 {
		cfg.FetchRetry.InitialDelay = defaultRetryDelay
	}
	if cfg.FetchRetry.MaxDelay <= 0 {
		cfg.FetchRetry.MaxDelay = defaultRetryMaxDelay
	}
}

// Validate checks the parts that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("no sources configured")
	}
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.FeedURL == "" {
			return fmt.Errorf("source %s: feed_url is required", s.Name)
		}
		if s.GatewayURL == "" {
			return fmt.Errorf("source %s: gateway_url is required", s.Name)
		}
		switch s.Type {
		case "news", "social", "messaging":
		default:
			return fmt.Errorf("source %s: unknown type %q", s.Name, s.Type)
		}
	}
	return nil
}

// RetryConfig materializes the fetch retry configuration.
func (c *Config) RetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  c.FetchRetry.MaxAttempts,
		InitialDelay: c.FetchRetry.InitialDelay,
		MaxDelay:     c.FetchRetry.MaxDelay,
		Multiplier:   2.0,
		IsRetryable:  retry.IsTransient,
	}
}

// EnabledSources filters out sources that cannot run: social and messaging
// feeds need a gateway token, and a missing one skips the source with a
// warning instead of failing every run.
func (c *Config) EnabledSources(log logger.Logger) []SourceConfig {
	enabled := make([]SourceConfig, 0, len(c.Sources))
	for _, s := range c.Sources {
		if s.Type != "news" && s.Token == "" {
			log.Warn("source skipped, credentials missing",
				logger.String("source", s.Name),
				logger.String("type", string(s.Type)))
			continue
		}
		enabled = append(enabled, s)
	}
	return enabled
}

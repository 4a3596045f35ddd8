package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  PostgresConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Dedupe    DedupeConfig    `yaml:"dedupe"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Mailbox   MailboxConfig   `yaml:"mailbox"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// PostgresConfig holds the lead store connection settings
type PostgresConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the dedupe store connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// WebhookConfig holds inbound webhook verification settings. Secret may
// hold several comma-separated keys during rotation; any of them validates.
type WebhookConfig struct {
	Secret           string `yaml:"secret"`
	ToleranceSeconds int    `yaml:"tolerance_seconds"`
}

// Tolerance returns the accepted timestamp skew as a duration
func (c WebhookConfig) Tolerance() time.Duration {
	return time.Duration(c.ToleranceSeconds) * time.Second
}

// DedupeConfig holds event dedupe settings
type DedupeConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLDays int  `yaml:"ttl_days"`
	// Required makes the gateway fail closed when the dedupe store is
	// unreachable instead of processing anyway.
	Required bool `yaml:"required"`
}

// TTL returns the dedupe retention window as a duration
func (c DedupeConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// DispatchConfig holds outbound reply dispatch settings
type DispatchConfig struct {
	Enabled        bool `yaml:"enabled"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c DispatchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MailboxConfig holds mailbox provider API configuration
type MailboxConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	InboxID        string `yaml:"inbox_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c MailboxConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DiscoveryConfig holds creator-search provider configuration
type DiscoveryConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	DailyMax       int    `yaml:"daily_max"`
	MinScore       int    `yaml:"min_score"`
}

// Timeout returns the configured timeout as a duration
func (c DiscoveryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoggingConfig holds structured logging settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII bool   `yaml:"redact_pii"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Webhook.ToleranceSeconds == 0 {
		cfg.Webhook.ToleranceSeconds = 300
	}
	if cfg.Dedupe.TTLDays == 0 {
		cfg.Dedupe.TTLDays = 30
	}
	if cfg.Dispatch.TimeoutSeconds == 0 {
		cfg.Dispatch.TimeoutSeconds = 15
	}
	if cfg.Mailbox.TimeoutSeconds == 0 {
		cfg.Mailbox.TimeoutSeconds = 30
	}
	if cfg.Discovery.TimeoutSeconds == 0 {
		cfg.Discovery.TimeoutSeconds = 30
	}
	if cfg.Discovery.DailyMax == 0 {
		cfg.Discovery.DailyMax = 50
	}
	if cfg.Discovery.MinScore == 0 {
		cfg.Discovery.MinScore = 50
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// Secrets never live in config.yaml in deployed environments; they arrive
// through the task environment and win over whatever the file says.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if secret := os.Getenv("WEBHOOK_SECRET"); secret != "" {
		cfg.Webhook.Secret = secret
	}
	if apiKey := os.Getenv("MAILBOX_API_KEY"); apiKey != "" {
		cfg.Mailbox.APIKey = apiKey
	}
	if baseURL := os.Getenv("MAILBOX_BASE_URL"); baseURL != "" {
		cfg.Mailbox.BaseURL = baseURL
	}
	if inboxID := os.Getenv("MAILBOX_INBOX_ID"); inboxID != "" {
		cfg.Mailbox.InboxID = inboxID
	}
	if apiKey := os.Getenv("DISCOVERY_API_KEY"); apiKey != "" {
		cfg.Discovery.APIKey = apiKey
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}

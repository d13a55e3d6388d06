// Package config provides configuration loading and hot reload.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Brick   BrickConfig   `yaml:"brick"`
	Site    SiteConfig    `yaml:"site"`
	API     APIConfig     `yaml:"api"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// BrickConfig configures the Brick API connection.
type BrickConfig struct {
	PublicKey string        `yaml:"public_key"`
	SecretKey string        `yaml:"secret_key"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// SiteConfig describes the storefront on whose behalf payments run.
type SiteConfig struct {
	// Name appears in payment descriptions ("Name - Order #N").
	Name string `yaml:"name"`
	// ReturnURL is the post-payment landing page. A %s verb, when
	// present, receives the order ID.
	ReturnURL string `yaml:"return_url"`
}

// APIConfig configures the platform-facing HTTP API.
type APIConfig struct {
	// KeyHash is the bcrypt hash of the API key the platform presents in
	// X-API-Key. Empty disables authentication.
	KeyHash string `yaml:"key_hash"`
}

// StoreConfig configures order/subscription persistence.
type StoreConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies BRICKGATE_* environment variables to the
// config. Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BRICKGATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("BRICKGATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BRICKGATE_BRICK_PUBLIC_KEY"); v != "" {
		cfg.Brick.PublicKey = v
	}
	if v := os.Getenv("BRICKGATE_BRICK_SECRET_KEY"); v != "" {
		cfg.Brick.SecretKey = v
	}
	if v := os.Getenv("BRICKGATE_BRICK_BASE_URL"); v != "" {
		cfg.Brick.BaseURL = v
	}
	if v := os.Getenv("BRICKGATE_SITE_NAME"); v != "" {
		cfg.Site.Name = v
	}
	if v := os.Getenv("BRICKGATE_SITE_RETURN_URL"); v != "" {
		cfg.Site.ReturnURL = v
	}
	if v := os.Getenv("BRICKGATE_API_KEY_HASH"); v != "" {
		cfg.API.KeyHash = v
	}
	if v := os.Getenv("BRICKGATE_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("BRICKGATE_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("BRICKGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BRICKGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Brick.BaseURL == "" {
		cfg.Brick.BaseURL = "https://api.paymentwall.com"
	}
	if cfg.Brick.Timeout == 0 {
		cfg.Brick.Timeout = 30 * time.Second
	}
	if cfg.Site.Name == "" {
		cfg.Site.Name = "brickgate"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "brickgate.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Brick.PublicKey == "" {
		return fmt.Errorf("brick.public_key is required")
	}
	if cfg.Brick.SecretKey == "" {
		return fmt.Errorf("brick.secret_key is required")
	}
	if cfg.Site.ReturnURL == "" {
		return fmt.Errorf("site.return_url is required")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	switch cfg.Store.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("store.driver %q unknown (sqlite or memory)", cfg.Store.Driver)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q unknown", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q unknown", cfg.Logging.Format)
	}
	return nil
}

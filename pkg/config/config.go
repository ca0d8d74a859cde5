// Package config loads the genflow runtime configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the runtime configuration shared by both binaries.
type Config struct {
	DatabaseURL string        `yaml:"database_url" validate:"required"`
	Backend     BackendConfig `yaml:"backend"`
	Cache       CacheConfig   `yaml:"cache"`
	Events      EventsConfig  `yaml:"events"`
	Retry       RetryConfig   `yaml:"retry"`
}

type BackendConfig struct {
	Provider   string        `yaml:"provider" validate:"required,oneof=gemini"`
	APIKey     string        `yaml:"api_key"`
	TextModel  string        `yaml:"text_model"`
	ImageModel string        `yaml:"image_model"`
	Timeout    time.Duration `yaml:"timeout" validate:"min=0"`
}

type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr" validate:"required_if=Enabled true,omitempty,hostname_port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"min=0"`
	TTL      time.Duration `yaml:"ttl" validate:"min=0"`
}

type EventsConfig struct {
	// Provider is empty or "none" to disable events.
	Provider string   `yaml:"provider" validate:"omitempty,oneof=none gochannel kafka"`
	Brokers  []string `yaml:"brokers"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" validate:"min=1,max=10"`
	Backoff     time.Duration `yaml:"backoff" validate:"min=0"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DatabaseURL: "file://./data",
		Backend: BackendConfig{
			Provider: "gemini",
			Timeout:  60 * time.Second,
		},
		Cache: CacheConfig{
			Addr: "localhost:6379",
			TTL:  24 * time.Hour,
		},
		Events: EventsConfig{
			Provider: "none",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			Backoff:     500 * time.Millisecond,
		},
	}
}

// Load reads a YAML file over the defaults. Environment references such as
// ${GEMINI_API_KEY} are expanded before parsing. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return config, nil
}

// Validate checks the configuration against its declared constraints.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// EventsEnabled reports whether lifecycle events are published.
func (c *Config) EventsEnabled() bool {
	return c.Events.Provider != "" && c.Events.Provider != "none"
}

// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	Production     bool   `yaml:"production"`
	// CallbackAddr is a host:port for the local OAuth callback listener.
	// Empty means out-of-band: the verifier is typed into the terminal.
	CallbackAddr       string `yaml:"callback_addr"`
	RenewSchedule      string `yaml:"renew_schedule"` // cron spec for the keep-alive job
	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
	LogLevel           string `yaml:"log_level"`
	LogPretty          bool   `yaml:"log_pretty"`
}

// ErrMissingCredentials is returned when no consumer key or secret is configured.
var ErrMissingCredentials = errors.New("consumer key and secret are required")

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		RenewSchedule:      "@every 90m",
		HTTPTimeoutSeconds: 30,
		LogLevel:           "info",
		LogPretty:          true,
	}
}

// Load reads configuration from an optional YAML file (ETRADE_CONFIG) and
// then from environment variables, which win.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("ETRADE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	// sb_consumer_* are the names used by the E*TRADE sample scripts.
	c.ConsumerKey = getEnv("ETRADE_CONSUMER_KEY", getEnv("sb_consumer_key", c.ConsumerKey))
	c.ConsumerSecret = getEnv("ETRADE_CONSUMER_SECRET", getEnv("sb_consumer_secret", c.ConsumerSecret))
	c.Production = getEnvAsBool("ETRADE_PRODUCTION", c.Production)
	c.CallbackAddr = getEnv("ETRADE_CALLBACK_ADDR", c.CallbackAddr)
	c.RenewSchedule = getEnv("ETRADE_RENEW_SCHEDULE", c.RenewSchedule)
	c.HTTPTimeoutSeconds = getEnvAsInt("HTTP_TIMEOUT_SECONDS", c.HTTPTimeoutSeconds)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPretty = getEnvAsBool("LOG_PRETTY", c.LogPretty)
}

// HTTPTimeout returns the per-request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return ErrMissingCredentials
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("http timeout must be positive, got %d", c.HTTPTimeoutSeconds)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	DBPath      string
	CatalogPath string // optional YAML recommendation catalog overrides
	CardAPI     CardAPIConfig
	Mail        MailConfig
	FAQEndpoint string
	Timeout     TimeoutConfig
}

// CardAPIConfig points at the card verification API.
type CardAPIConfig struct {
	BaseURL string
	Host    string
	Key     string
}

// MailConfig controls order confirmation delivery.
type MailConfig struct {
	RelayEndpoint string
	Sender        string
	BackoffUnit   time.Duration
}

// TimeoutConfig holds operational timeouts.
type TimeoutConfig struct {
	HealthCheck time.Duration
	Shutdown    time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBPath:      getEnv("DB_PATH", "./data/orders.db"),
		CatalogPath: getEnv("RECOMMEND_CATALOG_PATH", ""),
		CardAPI: CardAPIConfig{
			BaseURL: getEnv("CARD_API_BASE_URL", "https://card-validator.p.rapidapi.com"),
			Host:    getEnv("CARD_API_HOST", "card-validator.p.rapidapi.com"),
			Key:     getEnv("CARD_API_KEY", ""),
		},
		Mail: MailConfig{
			RelayEndpoint: getEnv("MAIL_RELAY_ENDPOINT", ""),
			Sender:        getEnv("MAIL_SENDER", ""),
			BackoffUnit:   getEnvDuration("MAIL_RETRY_BACKOFF", time.Second),
		},
		FAQEndpoint: getEnv("FAQ_ENDPOINT", ""),
		Timeout: TimeoutConfig{
			HealthCheck: getEnvDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),
			Shutdown:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.CardAPI.BaseURL == "" {
		return fmt.Errorf("CARD_API_BASE_URL cannot be empty")
	}
	if c.CardAPI.Host == "" {
		return fmt.Errorf("CARD_API_HOST cannot be empty")
	}
	if c.Mail.BackoffUnit <= 0 {
		return fmt.Errorf("MAIL_RETRY_BACKOFF must be > 0")
	}
	if c.Timeout.HealthCheck <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be > 0")
	}
	if c.Timeout.Shutdown <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	trimmed := strings.TrimSpace(value)
	if d, err := time.ParseDuration(trimmed); err == nil {
		return d
	}
	// Bare numbers are read as seconds.
	if n, err := strconv.Atoi(trimmed); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Databases
	ReadDatabaseURL  string
	WriteDatabaseURL string

	// Server
	ServerPort string

	// Collection
	Concurrency int
	Interval    time.Duration
	UploadTypes []string
	PinStatuses []string
}

// fileConfig is the optional YAML overlay for collection tuning
type fileConfig struct {
	Concurrency *int     `yaml:"concurrency"`
	Interval    string   `yaml:"interval"`
	UploadTypes []string `yaml:"upload_types"`
	PinStatuses []string `yaml:"pin_statuses"`
}

// Load loads configuration from environment variables, with an optional
// YAML file (CONFIG_FILE) overriding the collection settings
func Load() (*Config, error) {
	cfg := &Config{
		ReadDatabaseURL:  getEnv("READ_DATABASE_URL", "postgres://localhost/storage_replica?sslmode=disable"),
		WriteDatabaseURL: getEnv("WRITE_DATABASE_URL", "postgres://localhost/storage?sslmode=disable"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		Concurrency:      getEnvInt("COLLECT_CONCURRENCY", 4),
		Interval:         getEnvDuration("COLLECT_INTERVAL", 5*time.Minute),
		UploadTypes:      []string{"Car", "Blob", "Multipart", "Remote"},
		PinStatuses:      []string{"PinQueued", "Pinning", "Pinned", "PinError"},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyFile overlays settings from a YAML config file
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.Concurrency != nil {
		c.Concurrency = *fc.Concurrency
	}
	if fc.Interval != "" {
		d, err := time.ParseDuration(fc.Interval)
		if err != nil {
			return fmt.Errorf("parse interval: %w", err)
		}
		c.Interval = d
	}
	if fc.UploadTypes != nil {
		c.UploadTypes = fc.UploadTypes
	}
	if fc.PinStatuses != nil {
		c.PinStatuses = fc.PinStatuses
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

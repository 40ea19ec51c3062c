package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Validation ValidationConfig `json:"validation" yaml:"validation"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
}

// ValidationConfig tunes the date-validation policy
type ValidationConfig struct {
	// AllowPastDays is how many days in the past a due date may fall
	// before it is rejected as not in the future.
	AllowPastDays int `json:"allow_past_days" yaml:"allow_past_days"`
	// MaxFutureYears bounds how far ahead a due date may be scheduled.
	MaxFutureYears int `json:"max_future_years" yaml:"max_future_years"`
}

// StorageConfig represents storage configuration
type StorageConfig struct {
	// Provider selects the SQL driver: "sqlite" or "postgres".
	Provider string `json:"provider" yaml:"provider"`
	DSN      string `json:"dsn" yaml:"dsn"`
	// MaxOpenConns caps the connection pool; 0 means driver default.
	MaxOpenConns int `json:"max_open_conns" yaml:"max_open_conns"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Validation: ValidationConfig{
			AllowPastDays:  0,
			MaxFutureYears: 100,
		},
		Storage: StorageConfig{
			Provider:     "sqlite",
			DSN:          "./data/taskmanager.db",
			MaxOpenConns: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from defaults, an optional YAML policy
// file, and environment variables, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Don't fail if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := DefaultConfig()

	// Optional YAML policy file, pointed at by env
	if path := os.Getenv("TASKMANAGER_CONFIG_FILE"); path != "" {
		if err := loadFromFile(config, path); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	loadFromEnv(config)

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile merges a YAML config file over the current values
func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator env
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	loadValidationConfig(config)
	loadStorageConfig(config)
	loadLoggingConfig(config)
}

// loadValidationConfig loads validation policy from environment
func loadValidationConfig(config *Config) {
	if days := os.Getenv("TASKMANAGER_ALLOW_PAST_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			config.Validation.AllowPastDays = d
		}
	}
	if years := os.Getenv("TASKMANAGER_MAX_FUTURE_YEARS"); years != "" {
		if y, err := strconv.Atoi(years); err == nil {
			config.Validation.MaxFutureYears = y
		}
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig(config *Config) {
	if provider := os.Getenv("TASKMANAGER_STORAGE_PROVIDER"); provider != "" {
		config.Storage.Provider = provider
	}
	if dsn := os.Getenv("TASKMANAGER_STORAGE_DSN"); dsn != "" {
		config.Storage.DSN = dsn
	} else if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		config.Storage.DSN = dsn
	}
	if maxConns := os.Getenv("TASKMANAGER_STORAGE_MAX_OPEN_CONNS"); maxConns != "" {
		if mc, err := strconv.Atoi(maxConns); err == nil {
			config.Storage.MaxOpenConns = mc
		}
	}
}

// loadLoggingConfig loads logging configuration from environment
func loadLoggingConfig(config *Config) {
	if level := os.Getenv("TASKMANAGER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("TASKMANAGER_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if file := os.Getenv("TASKMANAGER_LOG_FILE"); file != "" {
		config.Logging.File = file
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Validation.AllowPastDays < 0 {
		return fmt.Errorf("validation allow_past_days cannot be negative: %d", c.Validation.AllowPastDays)
	}
	if c.Validation.MaxFutureYears <= 0 {
		return fmt.Errorf("validation max_future_years must be positive: %d", c.Validation.MaxFutureYears)
	}
	switch c.Storage.Provider {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported storage provider: %s", c.Storage.Provider)
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("storage DSN is required")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	return nil
}

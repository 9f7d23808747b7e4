package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerPort string

	// Paths
	ConfigDir    string
	DatabaseFile string // $CONFIG_DIR/mediaq.db unless DATABASE_FILE is set

	// Logging
	LogLevel  string
	LogFormat string // json or console

	// Engine
	DefaultPagesPerInterval float64 // reading speed for owners without settings
	SettingsCacheTTL        time.Duration
	StoreRetryMaxElapsed    time.Duration // retry budget for transient store contention

	// Scheduler
	QueueAuditSchedule string // cron expression, empty disables the audit
	QueueAutoRepair    bool

	// Tracing
	TracingEnabled bool
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	// Setup viper FIRST to load .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = v.ReadInConfig()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DEFAULT_PAGES_PER_INTERVAL", 20)
	v.SetDefault("SETTINGS_CACHE_TTL_MINUTES", 5)
	v.SetDefault("STORE_RETRY_MAX_ELAPSED_MS", 2000)
	v.SetDefault("QUEUE_AUDIT_SCHEDULE", "0 * * * *")
	v.SetDefault("QUEUE_AUTO_REPAIR", false)
	v.SetDefault("TRACING_ENABLED", false)

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := v.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "mediaq")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	databaseFile := v.GetString("DATABASE_FILE")
	if databaseFile == "" {
		databaseFile = filepath.Join(configDir, "mediaq.db")
	}

	config := &Config{
		ServerPort: v.GetString("SERVER_PORT"),

		ConfigDir:    configDir,
		DatabaseFile: databaseFile,

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		DefaultPagesPerInterval: v.GetFloat64("DEFAULT_PAGES_PER_INTERVAL"),
		SettingsCacheTTL:        time.Duration(v.GetInt("SETTINGS_CACHE_TTL_MINUTES")) * time.Minute,
		StoreRetryMaxElapsed:    time.Duration(v.GetInt("STORE_RETRY_MAX_ELAPSED_MS")) * time.Millisecond,

		QueueAuditSchedule: v.GetString("QUEUE_AUDIT_SCHEDULE"),
		QueueAutoRepair:    v.GetBool("QUEUE_AUTO_REPAIR"),

		TracingEnabled: v.GetBool("TRACING_ENABLED"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.DefaultPagesPerInterval <= 0 {
		return fmt.Errorf("DEFAULT_PAGES_PER_INTERVAL must be greater than zero")
	}
	if c.SettingsCacheTTL < 0 {
		return fmt.Errorf("SETTINGS_CACHE_TTL_MINUTES must not be negative")
	}
	if c.StoreRetryMaxElapsed < 0 {
		return fmt.Errorf("STORE_RETRY_MAX_ELAPSED_MS must not be negative")
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	if c.QueueAuditSchedule != "" {
		if _, err := cron.ParseStandard(c.QueueAuditSchedule); err != nil {
			return fmt.Errorf("invalid QUEUE_AUDIT_SCHEDULE: %w", err)
		}
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// loaded from environment variables, no magic defaults for required fields.
type Config struct {
	Database DatabaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Server   ServerConfig
	Rewards  RewardsConfig
	Alerts   AlertConfig
	LogLevel string
}

// AlertConfig configures discrepancy alerts.
// an empty WebhookURL disables them.
type AlertConfig struct {
	WebhookURL    string
	WebhookSecret string
	// MinDiscrepancy is the smallest absolute difference that triggers an alert.
	MinDiscrepancy int64
}

// DatabaseConfig contains database connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Schema   string
}

// AuthConfig contains authentication configuration.
type AuthConfig struct {
	// JWTSecret is the supabase jwt secret for token validation
	JWTSecret string
}

// RedisConfig contains the optional redis connection.
// an empty URL disables the breakdown cache.
type RedisConfig struct {
	URL string
}

// ServerConfig contains the http listener settings.
type ServerConfig struct {
	Port string
}

// RewardsConfig tunes the recomputation batch.
type RewardsConfig struct {
	// Concurrency bounds how many users are recomputed at once.
	Concurrency int
	// CacheTTL is how long a cached breakdown is served before recomputing.
	CacheTTL time.Duration
	// RecomputeInterval is the background recompute period. zero disables the worker.
	RecomputeInterval time.Duration
	// BatchLimit caps the users covered by one batch. zero means all.
	BatchLimit int
}

// DefaultRewardsConfig returns the batch defaults.
func DefaultRewardsConfig() RewardsConfig {
	return RewardsConfig{
		Concurrency:       8,
		CacheTTL:          10 * time.Minute,
		RecomputeInterval: 0,
		BatchLimit:        0,
	}
}

// ConnectionString returns the postgres connection string.
func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
		c.Schema,
	)
}

// Load reads configuration from environment variables.
// loads .env file if present, but doesn't fail if it's missing.
func Load() (*Config, error) {
	// try to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}

	authConfig, err := loadAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("auth config: %w", err)
	}

	rewardsConfig, err := loadRewardsConfig()
	if err != nil {
		return nil, fmt.Errorf("rewards config: %w", err)
	}

	alertConfig, err := loadAlertConfig()
	if err != nil {
		return nil, fmt.Errorf("alert config: %w", err)
	}

	return &Config{
		Database: dbConfig,
		Auth:     authConfig,
		Alerts:   alertConfig,
		Redis:    RedisConfig{URL: os.Getenv("REDIS_URL")},
		Server:   ServerConfig{Port: getEnvOrDefault("PORT", "8080")},
		Rewards:  rewardsConfig,
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

// LoadRewardsOnly reads the settings a one-shot command needs.
// the jwt secret is not required outside the http server.
func LoadRewardsOnly() (*Config, error) {
	_ = godotenv.Load()

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}

	rewardsConfig, err := loadRewardsConfig()
	if err != nil {
		return nil, fmt.Errorf("rewards config: %w", err)
	}

	return &Config{
		Database: dbConfig,
		Redis:    RedisConfig{URL: os.Getenv("REDIS_URL")},
		Rewards:  rewardsConfig,
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

func loadAuthConfig() (AuthConfig, error) {
	config := AuthConfig{
		JWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
	}

	if config.JWTSecret == "" {
		return config, errors.New("SUPABASE_JWT_SECRET is required")
	}

	return config, nil
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	config := DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  getEnvOrDefault("DB_SSL_MODE", "require"),
		Schema:   getEnvOrDefault("DB_SCHEMA", "public"),
	}

	// required fields must be set
	if config.User == "" {
		return config, errors.New("DB_USER is required")
	}
	if config.Password == "" {
		return config, errors.New("DB_PASSWORD is required")
	}
	if config.Name == "" {
		return config, errors.New("DB_NAME is required")
	}

	return config, nil
}

func loadRewardsConfig() (RewardsConfig, error) {
	config := DefaultRewardsConfig()
	var err error

	if config.Concurrency, err = getEnvInt("REWARDS_CONCURRENCY", config.Concurrency); err != nil {
		return config, err
	}
	if config.Concurrency < 1 {
		return config, errors.New("REWARDS_CONCURRENCY must be at least 1")
	}
	if config.BatchLimit, err = getEnvInt("REWARDS_BATCH_LIMIT", config.BatchLimit); err != nil {
		return config, err
	}
	if config.CacheTTL, err = getEnvDuration("REWARDS_CACHE_TTL", config.CacheTTL); err != nil {
		return config, err
	}
	if config.RecomputeInterval, err = getEnvDuration("REWARDS_RECOMPUTE_INTERVAL", config.RecomputeInterval); err != nil {
		return config, err
	}

	return config, nil
}

func loadAlertConfig() (AlertConfig, error) {
	config := AlertConfig{
		WebhookURL:    os.Getenv("REWARDS_ALERT_WEBHOOK_URL"),
		WebhookSecret: os.Getenv("REWARDS_ALERT_WEBHOOK_SECRET"),
	}

	if config.WebhookURL != "" && config.WebhookSecret == "" {
		return config, errors.New("REWARDS_ALERT_WEBHOOK_SECRET is required when REWARDS_ALERT_WEBHOOK_URL is set")
	}

	minDiscrepancy, err := getEnvInt("REWARDS_ALERT_MIN_DISCREPANCY", 1)
	if err != nil {
		return config, err
	}
	if minDiscrepancy < 1 {
		return config, errors.New("REWARDS_ALERT_MIN_DISCREPANCY must be at least 1")
	}
	config.MinDiscrepancy = int64(minDiscrepancy)

	return config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

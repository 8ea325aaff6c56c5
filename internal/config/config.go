package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Store    StoreConfig
	Engine   EngineConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// StoreConfig selects the persistence backend. "postgres" is the
// production store; "memory" runs the engine without external state for
// local development.
type StoreConfig struct {
	Type string
}

// EngineConfig holds the payroll computation knobs.
type EngineConfig struct {
	// StandardDailyHours is the daily threshold above which worked hours
	// count as overtime.
	StandardDailyHours decimal.Decimal
	// OvertimeMultiplier scales the hourly-equivalent rate for overtime pay.
	OvertimeMultiplier decimal.Decimal
	// BulkConcurrency bounds parallel fan-out for bulk ingestion and
	// payroll generation.
	BulkConcurrency int
	// OpTimeout bounds each engine operation.
	OpTimeout time.Duration
}

func Load() (*Config, error) {
	// Absent .env is fine; containers configure through the environment.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "tallyops-payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	config.Store = StoreConfig{
		Type: getEnv("STORE_TYPE", "postgres"),
	}

	// Engine configuration
	standardDailyHours, err := decimal.NewFromString(getEnv("STANDARD_DAILY_HOURS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid STANDARD_DAILY_HOURS: %w", err)
	}
	overtimeMultiplier, err := decimal.NewFromString(getEnv("OVERTIME_MULTIPLIER", "1.5"))
	if err != nil {
		return nil, fmt.Errorf("invalid OVERTIME_MULTIPLIER: %w", err)
	}
	bulkConcurrency, err := strconv.Atoi(getEnv("BULK_CONCURRENCY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid BULK_CONCURRENCY: %w", err)
	}
	opTimeout, err := time.ParseDuration(getEnv("OP_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid OP_TIMEOUT: %w", err)
	}

	config.Engine = EngineConfig{
		StandardDailyHours: standardDailyHours,
		OvertimeMultiplier: overtimeMultiplier,
		BulkConcurrency:    bulkConcurrency,
		OpTimeout:          opTimeout,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	switch c.Store.Type {
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported STORE_TYPE: %s", c.Store.Type)
	}
	if !c.Engine.StandardDailyHours.IsPositive() {
		return fmt.Errorf("STANDARD_DAILY_HOURS must be positive")
	}
	if c.Engine.OvertimeMultiplier.IsNegative() {
		return fmt.Errorf("OVERTIME_MULTIPLIER must not be negative")
	}
	if c.Engine.BulkConcurrency < 1 {
		return fmt.Errorf("BULK_CONCURRENCY must be at least 1")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

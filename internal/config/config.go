package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Booking  BookingConfig
	Shop     ShopConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration. APIKey protects the
// storefront routes; JWTSecret signs admin session tokens.
type AuthConfig struct {
	APIKey          string
	JWTSecret       string
	SessionTTLHours int
}

// BookingConfig holds the salon booking rules. The cancellation cutoff has an
// explicit 24-hour default; lead time and horizon are deployment choices.
type BookingConfig struct {
	CancellationCutoffHours int
	MinLeadTimeMinutes      int
	MaxHorizonDays          int
}

// ShopConfig holds shop-wide settings.
type ShopConfig struct {
	Currency string
	// FlatShipping is the shipping charge in minor units; 0 disables it.
	FlatShipping int64
	// PointRate is the minor-unit value of one loyalty point.
	PointRate int64
	// WebhookSecret authenticates inbound payment-provider webhooks.
	WebhookSecret string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "glowdesk"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey:          getEnv("API_KEY", ""),
			JWTSecret:       getEnv("JWT_SECRET", ""),
			SessionTTLHours: getEnvAsInt("SESSION_TTL_HOURS", 24),
		},
		Booking: BookingConfig{
			CancellationCutoffHours: getEnvAsInt("BOOKING_CANCELLATION_CUTOFF_HOURS", 24),
			MinLeadTimeMinutes:      getEnvAsInt("BOOKING_MIN_LEAD_TIME_MINUTES", 60),
			MaxHorizonDays:          getEnvAsInt("BOOKING_MAX_HORIZON_DAYS", 90),
		},
		Shop: ShopConfig{
			Currency:      getEnv("SHOP_CURRENCY", "chf"),
			FlatShipping:  int64(getEnvAsInt("SHOP_FLAT_SHIPPING", 0)),
			PointRate:     int64(getEnvAsInt("LOYALTY_POINT_RATE", 1)),
			WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if c.Auth.SessionTTLHours < 1 {
		return fmt.Errorf("session TTL must be at least one hour")
	}

	if c.Booking.CancellationCutoffHours < 0 {
		return fmt.Errorf("cancellation cutoff cannot be negative")
	}

	if c.Booking.MinLeadTimeMinutes < 0 {
		return fmt.Errorf("minimum lead time cannot be negative")
	}

	if c.Booking.MaxHorizonDays < 1 {
		return fmt.Errorf("booking horizon must be at least one day")
	}

	if c.Shop.Currency == "" {
		return fmt.Errorf("shop currency is required")
	}

	if c.Shop.FlatShipping < 0 {
		return fmt.Errorf("flat shipping cannot be negative")
	}

	if c.Shop.PointRate < 1 {
		return fmt.Errorf("loyalty point rate must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

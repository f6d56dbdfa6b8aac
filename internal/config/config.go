package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Prices   PricesConfig
	Security SecurityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// PricesConfig holds the schedule for the daily price and exchange-rate
// refresh. The schedule uses the cron expression format.
type PricesConfig struct {
	RefreshSchedule string
	RefreshEnabled  bool
}

// SecurityConfig holds secrets used by the application. The encryption key
// is a base64 fernet key protecting stored API tokens.
type SecurityConfig struct {
	EncryptionKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/holdings_tracker.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(
				getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost"),
				",",
			),
		},
		Prices: PricesConfig{
			RefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", "0 6 * * *"),
			RefreshEnabled:  getEnv("PRICE_REFRESH_ENABLED", "true") == "true",
		},
		Security: SecurityConfig{
			EncryptionKey: os.Getenv("ENCRYPTION_KEY"),
		},
	}

	if config.Security.EncryptionKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be set")
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

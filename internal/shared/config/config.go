package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Model      ModelConfig
	Formulary  FormularyConfig
	EventStore EventStoreConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// ModelConfig holds paths to the trained classifier artifacts.
type ModelConfig struct {
	// Path to the JSON model artifact produced by the training pipeline
	Path string
}

// FormularyConfig holds settings for the optional hospital formulary import.
// When disabled the compiled-in drug profile table is used.
type FormularyConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Database string
	User     string
	Password string
	// Table holding the formulary rows (name, min_dose, max_dose, unit, age_sensitive)
	Table string
}

// EventStoreConfig holds configuration for the prediction audit stream.
type EventStoreConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Insecure bool
	Username string
	Password string
}

type AuthConfig struct {
	JWTSecret string
}

type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("SERVER_PORT", 8080),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "medlink"),
			Password: getEnv("DB_PASSWORD", "medlink"),
			Database: getEnv("DB_NAME", "medlink"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Model: ModelConfig{
			Path: getEnv("MODEL_PATH", "artifacts/dosage_model.json"),
		},
		Formulary: FormularyConfig{
			Enabled:  getEnvBool("FORMULARY_ENABLED", false),
			Host:     getEnv("FORMULARY_HOST", "localhost"),
			Port:     getEnvInt("FORMULARY_PORT", 1433),
			Database: getEnv("FORMULARY_DB", "his"),
			User:     getEnv("FORMULARY_USER", ""),
			Password: getEnv("FORMULARY_PASSWORD", ""),
			Table:    getEnv("FORMULARY_TABLE", "dbo.Formulary"),
		},
		EventStore: EventStoreConfig{
			Enabled:  getEnvBool("EVENTSTORE_ENABLED", false),
			Host:     getEnv("EVENTSTORE_HOST", "localhost"),
			Port:     getEnvInt("EVENTSTORE_PORT", 2113),
			Insecure: getEnvBool("EVENTSTORE_INSECURE", true),
			Username: getEnv("EVENTSTORE_USERNAME", ""),
			Password: getEnv("EVENTSTORE_PASSWORD", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-prod"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvInt("RATE_LIMIT_RPS", 50),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 100),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

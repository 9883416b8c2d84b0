package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"modelhub/internal/logger"
	"modelhub/internal/provider"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Chat      ChatConfig
	Auth      AuthConfig
	Providers *ProvidersConfig
	// Env is the server environment handed to provider adapters
	Env provider.Env
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrationsPath string
}

// ChatConfig holds defaults for chat sessions
type ChatConfig struct {
	Backend             provider.HandleBackend
	DefaultProvider     string
	DefaultSystemPrompt string
	SummarizationPrompt string
	Temperature         float64
	TopP                float64
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret       []byte
	TokenExpiration time.Duration
}

// LoadDotEnv loads variables from .env files that exist, without overriding the environment
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		logger.Log.WithField("path", path).Debug("Loaded environment file")
	}
	return nil
}

// LoadConfig loads and validates application configuration from environment
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{}

	config.Server = ServerConfig{
		Port: getEnvOrDefault("SERVER_PORT", "8080"),
	}

	config.Database = DatabaseConfig{
		Host:           getEnvOrDefault("DB_HOST", "postgres"),
		Port:           getEnvOrDefault("DB_PORT", "5432"),
		User:           getEnvOrDefault("DB_USER", "postgres"),
		Password:       getEnvOrDefault("DB_PASSWORD", "postgres"),
		Name:           getEnvOrDefault("DB_NAME", "modelhub"),
		SSLMode:        getEnvOrDefault("DB_SSLMODE", "disable"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
	}

	backend, err := provider.ParseHandleBackend(os.Getenv("CHAT_BACKEND"))
	if err != nil {
		return nil, err
	}

	config.Chat = ChatConfig{
		Backend:             backend,
		DefaultProvider:     getEnvOrDefault("DEFAULT_PROVIDER", provider.OpenRouterName),
		DefaultSystemPrompt: getEnvOrDefault("DEFAULT_SYSTEM_PROMPT", "You are a helpful assistant."),
		SummarizationPrompt: os.Getenv("SUMMARIZATION_PROMPT"),
		Temperature:         getEnvAsFloat("CHAT_TEMPERATURE", 0.7),
		TopP:                getEnvAsFloat("CHAT_TOP_P", 0.9),
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable must be set")
	}
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters (current length: %d)", len(jwtSecret))
	}

	config.Auth = AuthConfig{
		JWTSecret:       []byte(jwtSecret),
		TokenExpiration: getEnvAsDuration("JWT_TOKEN_EXPIRATION", 24*time.Hour),
	}

	// The providers file is optional; without it every provider is enabled with defaults
	providersPath := getEnvOrDefault("PROVIDERS_CONFIG_PATH", filepath.Join("config", "providers.json"))
	providers, err := NewProvidersConfig(providersPath)
	switch {
	case err == nil:
		config.Providers = providers
	case errors.Is(err, fs.ErrNotExist):
		logger.Log.WithField("path", providersPath).Warn("Providers config not found, using defaults")
		config.Providers = &ProvidersConfig{}
	default:
		return nil, fmt.Errorf("failed to load providers config: %w", err)
	}

	config.Env = provider.EnvFromOS()

	return config, nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid float value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid duration value, using default")
		return defaultValue
	}
	return value
}

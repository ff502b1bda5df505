package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	// Logging configuration
	LogLevel  string
	LogFormat string

	// Application configuration
	Environment string

	// Path to the engine bootstrap file
	EngineFile string
}

// Load loads the configuration from environment variables.
func Load() *Config {
	config := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		Environment: getEnv("ENVIRONMENT", "development"),
		EngineFile:  getEnv("ENGINE_FILE", "engine.yaml"),
	}

	return config
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

// getEnvAsInt gets an environment variable as integer with a default value.
func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

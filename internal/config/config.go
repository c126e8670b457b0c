package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Document store configuration
	MongoURI       string
	LearningDB     string
	PrefsDB        string
	ConnectTimeout time.Duration
	OpTimeout      time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		LearningDB:     getEnv("MONGO_DATABASE", "rsl_lp_db"),
		PrefsDB:        getEnv("MONGO_PREFS_DATABASE", "user_pref_db"),
		ConnectTimeout: time.Duration(getEnvAsInt("MONGO_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second,
		OpTimeout:      time.Duration(getEnvAsInt("MONGO_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	// Validate required fields
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.LearningDB == "" {
		return nil, fmt.Errorf("MONGO_DATABASE is required")
	}
	if cfg.PrefsDB == "" {
		return nil, fmt.Errorf("MONGO_PREFS_DATABASE is required")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

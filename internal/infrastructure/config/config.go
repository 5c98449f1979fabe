package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// CORS
	CORSAllowedOrigins []string

	// FieldOS backend
	FieldOSBaseURL   string
	FieldOSToken     string
	FieldOSClientID  string
	FieldOSClientSec string
	FieldOSUsername  string
	FieldOSPassword  string
	RequestTimeout   time.Duration

	// Dispatch board
	PollInterval time.Duration
	Timezone     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),

		FieldOSBaseURL:   getEnv("FIELDOS_API_URL", "https://api.fieldos.app"),
		FieldOSToken:     getEnv("FIELDOS_API_TOKEN", ""),
		FieldOSClientID:  getEnv("FIELDOS_CLIENT_ID", ""),
		FieldOSClientSec: getEnv("FIELDOS_CLIENT_SECRET", ""),
		FieldOSUsername:  getEnv("FIELDOS_USERNAME", ""),
		FieldOSPassword:  getEnv("FIELDOS_PASSWORD", ""),
		RequestTimeout:   time.Duration(getEnvAsInt("REQUEST_TIMEOUT", 30)) * time.Second,

		PollInterval: time.Duration(getEnvAsInt("POLL_INTERVAL", 30)) * time.Second,
		Timezone:     getEnv("DISPATCH_TIMEZONE", "Local"),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Package config provides configuration for the rental assistant.
package config

import (
	"os"
	"strconv"
	"time"
)

// Backend kinds selectable via RENTAL_BACKEND.
const (
	BackendBooqable = "booqable"
	BackendWebhook  = "webhook"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Assistant settings
	OpenAIAPIKey  string
	OpenAIBaseURL string
	AssistantID   string
	Model         string

	// Rental backend selection: "booqable" or "webhook"
	Backend string

	// Booqable REST backend
	BooqableBaseURL string
	BooqableAPIKey  string

	// Webhook backend endpoints
	WebhookProductsURL     string
	WebhookAvailabilityURL string
	WebhookCreateOrderURL  string

	// Phone numbers without a + prefix get this country code.
	DefaultCountryCode string

	// Timeouts
	BackendTimeout time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:               getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:            getEnv("DATABASE_URL", "file:rental_assistant.db?cache=shared&mode=rwc"),
		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:          getEnv("OPENAI_BASE_URL", ""),
		AssistantID:            getEnv("OPENAI_ASSISTANT_ID", ""),
		Model:                  getEnv("OPENAI_MODEL", "gpt-4o"),
		Backend:                getEnv("RENTAL_BACKEND", BackendBooqable),
		BooqableBaseURL:        getEnv("BOOQABLE_BASE_URL", ""),
		BooqableAPIKey:         getEnv("BOOQABLE_API_KEY", ""),
		WebhookProductsURL:     getEnv("WEBHOOK_PRODUCTS_URL", ""),
		WebhookAvailabilityURL: getEnv("WEBHOOK_AVAILABILITY_URL", ""),
		WebhookCreateOrderURL:  getEnv("WEBHOOK_CREATE_ORDER_URL", ""),
		DefaultCountryCode:     getEnv("DEFAULT_COUNTRY_CODE", "+1"),
		BackendTimeout:         time.Duration(getEnvInt("BACKEND_TIMEOUT_MS", 15000)) * time.Millisecond,
		LogLevel:               getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	PublicBaseURL string

	UpstreamAPIURL string
	UpstreamAPIKey string

	ActivationAPIURL string
	ActivationAPIKey string

	StripeSecretKey string

	RedisAddr     string
	SessionSecret string

	// DevFallbackData swaps in the placeholder membership dataset when the
	// upstream list call fails. Never enable in production.
	DevFallbackData bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		UpstreamAPIURL: getEnv("UPSTREAM_API_URL", "https://formacr.com"),
		UpstreamAPIKey: getEnv("UPSTREAM_API_KEY", ""),

		ActivationAPIURL: getEnv("ACTIVATION_API_URL", "https://formacr.com"),
		ActivationAPIKey: getEnv("ACTIVATION_API_KEY", ""),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		SessionSecret: getEnv("SESSION_SECRET", "secret-key"),

		DevFallbackData: getEnv("DEV_FALLBACK_DATA", "false") == "true",
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

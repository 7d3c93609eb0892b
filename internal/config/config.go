package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	SalonTimezone string

	// Bearer auth for customer/staff endpoints.
	AuthJWTSecret string

	// Redis day-cache for the manager schedule.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	ScheduleTTL   time.Duration

	// Outbox deliverer.
	OutboxBatchSize    int
	OutboxPollInterval time.Duration

	// Booking notification email.
	SendGridAPIKey     string
	SendGridFromEmail  string
	SendGridFromName   string
	NotificationsInbox string

	// Per-IP rate limiting on booking endpoints.
	RateLimitPerSecond float64
	RateLimitBurst     int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SalonTimezone: getEnv("SALON_TIMEZONE", "Asia/Jerusalem"),

		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		ScheduleTTL:   getEnvAsDuration("SCHEDULE_CACHE_TTL", 5*time.Minute),

		OutboxBatchSize:    getEnvAsInt("OUTBOX_BATCH_SIZE", 25),
		OutboxPollInterval: getEnvAsDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),

		SendGridAPIKey:     getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:  getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:   getEnv("SENDGRID_FROM_NAME", "Barbery"),
		NotificationsInbox: getEnv("NOTIFICATIONS_INBOX", ""),

		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

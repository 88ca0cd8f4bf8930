package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Email transport selection: "ses", "sendgrid", or "stub".
	EmailProvider     string
	SendGridAPIKey    string
	AWSRegion         string
	AWSAccessKeyID    string
	AWSSecretAccessKey string

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	ReminderTickInterval       time.Duration
	ReminderDefaultHoursBefore int
	ReminderCheckWindowHours   int
	ReminderWorkerEnabled      bool

	ActivityCacheTTL time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		EmailProvider:      strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:     getEnv("SENDGRID_API_KEY", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),

		ReminderTickInterval:       getEnvAsDuration("REMINDER_TICK_INTERVAL", time.Hour),
		ReminderDefaultHoursBefore: getEnvAsInt("REMINDER_DEFAULT_HOURS_BEFORE", 24),
		ReminderCheckWindowHours:   getEnvAsInt("REMINDER_CHECK_WINDOW_HOURS", 25),
		ReminderWorkerEnabled:      getEnvAsBool("REMINDER_WORKER_ENABLED", true),

		ActivityCacheTTL: getEnvAsDuration("ACTIVITY_CACHE_TTL", 5*time.Minute),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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

// getEnvAsSlice splits a comma-separated environment variable, trimming
// whitespace and dropping empty entries.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

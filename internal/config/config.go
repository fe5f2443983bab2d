package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabasePath string
	SiteFile     string

	AdminUsername string
	AdminPassword string

	// Contact form timings. SubmitDelay keeps the "sending" state visible,
	// SuccessWindow is how long the thank-you notice stays up.
	SubmitDelay   time.Duration
	SuccessWindow time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	TrackVisits    bool
	VisitRetention time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      strings.ToLower(getEnv("ENV", "development")),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		DatabasePath: getEnv("DATABASE_PATH", "data/portfolio.db"),
		SiteFile:     getEnv("SITE_FILE", ""),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		SubmitDelay:   getEnvAsDuration("SUBMIT_DELAY", 1500*time.Millisecond),
		SuccessWindow: getEnvAsDuration("SUCCESS_WINDOW", 4*time.Second),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 5),

		TrackVisits:    getEnvAsBool("TRACK_VISITS", true),
		VisitRetention: getEnvAsDuration("VISIT_RETENTION", 365*24*time.Hour),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// AdminEnabled reports whether admin credentials were configured.
// Unlike the development fallback, production never runs with defaults.
func (c *Config) AdminEnabled() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
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

package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer         string // Required: issuer claim for tokens
	BootstrapToken string // Optional: token required to perform bootstrap

	NumKeys             int           // Optional: number of signing keys to generate (default: 3, min: 1, max: 10)
	AccessTokenTTL      time.Duration // Optional: access token lifetime (default: 15m)
	TransferTTL         time.Duration // Optional: ownership transfer lifetime (default: 7 days)
	DatabaseFile        string        // Optional: path to SQLite database file (default: ./tenancy.db)
	PepperFile          string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// Production reports whether the X-Team-Subdomain development override must
// be disabled.
func (c Config) Production() bool {
	return c.Env == "prod" || c.Env == "production"
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:         os.Getenv("TENANCY_ISSUER"),
		AccessTokenTTL: getEnvDurationOrDefault("TENANCY_ACCESS_TOKEN_TTL", 15*time.Minute),
		TransferTTL:    getEnvDurationOrDefault("TENANCY_TRANSFER_TTL", 7*24*time.Hour),
		DatabaseFile:   getEnvOrDefault("TENANCY_DATABASE_FILE", "tenancy.db"),
		PepperFile:     getEnvOrDefault("TENANCY_PEPPER_FILE", "pepper"),
		BootstrapToken: os.Getenv(
			"BOOTSTRAP_TOKEN",
		), // Optional: if set, required to perform bootstrap
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	// Parse number of keys (default: 3)
	if numKeysStr := os.Getenv("TENANCY_NUM_KEYS"); numKeysStr != "" {
		if numKeys, err := strconv.Atoi(numKeysStr); err == nil {
			cfg.NumKeys = numKeys
		}
		// If parsing fails, NumKeys remains 0 (will use default in KeyManager)
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "sideline-tenancy"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

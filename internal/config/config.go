package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	// Remote draft backend
	BackendBaseURL string
	JWKSURL        string // Constructed from BackendBaseURL unless overridden
	CORSOrigins    string
	// Model selection defaults
	DefaultProvider string
	DefaultModel    string
	// Local state
	CacheDir     string
	PollInterval time.Duration
	// Logging
	LogDir string // empty = stdout only
	Debug  bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	backendURL := getEnv("BACKEND_BASE_URL", "http://localhost:8080/api/v1")

	// JWKS endpoint lives on the backend's auth service unless overridden
	jwksURL := getEnv("JWKS_URL", backendURL+"/auth/.well-known/jwks.json")

	return &Config{
		Port:            getEnv("PORT", "8090"),
		Environment:     env,
		BackendBaseURL:  backendURL,
		JWKSURL:         jwksURL,
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		DefaultProvider: getEnv("DEFAULT_PROVIDER", "anthropic"),
		DefaultModel:    getEnv("DEFAULT_MODEL", "claude-haiku-4-5"),
		CacheDir:        getEnv("CACHE_DIR", ".draftdeck/cache"),
		PollInterval:    getDuration("POLL_INTERVAL", 3*time.Second),
		LogDir:          getEnv("LOG_DIR", ""),
		// Debug defaults to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// Package config loads service settings from the environment.
// Command-line flags in cmd/ use these values as their defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application-level configuration
type Config struct {
	// HTTP
	Port           int
	AllowedOrigins []string
	MaxUploadMB    int

	// Session workspace
	DBPath     string // ":memory:" keeps sessions in RAM only
	SessionTTL time.Duration

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, console

	// Pipeline
	DefaultVariant string
}

// Load reads configuration from environment variables or falls back to defaults
func Load() *Config {
	return &Config{
		Port:           getEnvInt("SALESGRID_PORT", 8080),
		AllowedOrigins: getEnvList("SALESGRID_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
		MaxUploadMB:    getEnvInt("SALESGRID_MAX_UPLOAD_MB", 32),
		DBPath:         getEnv("SALESGRID_DB", ":memory:"),
		SessionTTL:     getEnvDuration("SALESGRID_SESSION_TTL", time.Hour),
		LogLevel:       getEnv("SALESGRID_LOG_LEVEL", "info"),
		LogFormat:      getEnv("SALESGRID_LOG_FORMAT", "json"),
		DefaultVariant: getEnv("SALESGRID_VARIANT", "delimited_text"),
	}
}

// MaxUploadBytes converts MaxUploadMB to bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDisk     = "disk"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// StoreDriver selects where the plan document lives: disk, postgres or
	// redis. Defaults to disk.
	StoreDriver string

	// DataDir is the disk store's base directory. Defaults to "./data".
	DataDir string

	// DatabaseURL is the Postgres connection string. Required for postgres.
	DatabaseURL string

	// RedisURL is the Redis connection URL. Required for redis.
	RedisURL string

	// PlanKey is the key the plan is stored under. Defaults to "travelPlan".
	PlanKey string

	// LocationIQAPIKey enables the keyed geocoding provider. Optional; the
	// keyless provider is always used as a fallback.
	LocationIQAPIKey string

	// GeocoderUserAgent identifies this application to geocoding providers.
	GeocoderUserAgent string

	// MaxImportBytes caps request body sizes. Defaults to 5 MiB.
	MaxImportBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing every problem found: required variables that are
// not set and values that do not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", StoreDisk)),
		DataDir:           getEnv("DATA_DIR", "./data"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		PlanKey:           getEnv("PLAN_KEY", "travelPlan"),
		LocationIQAPIKey:  os.Getenv("LOCATIONIQ_API_KEY"),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "trip-planner/1.0"),
	}

	var missing, invalid []string

	switch cfg.StoreDriver {
	case StoreDisk:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreRedis:
		if cfg.RedisURL == "" {
			missing = append(missing, "REDIS_URL")
		}
	default:
		invalid = append(invalid, fmt.Sprintf("STORE_DRIVER=%q (want disk, postgres or redis)", cfg.StoreDriver))
	}

	maxBytes, err := strconv.ParseInt(getEnv("MAX_IMPORT_BYTES", "5242880"), 10, 64)
	if err != nil || maxBytes <= 0 {
		invalid = append(invalid, "MAX_IMPORT_BYTES must be a positive integer")
	}
	cfg.MaxImportBytes = maxBytes

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variables: "+strings.Join(invalid, "; "))
	}
	if len(problems) > 0 {
		return Config{}, fmt.Errorf("%s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

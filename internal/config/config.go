// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
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

	// StoreBackend selects the document store: postgres, firestore or memory.
	// Defaults to postgres.
	StoreBackend string

	// DatabaseURL is the Postgres connection string. Required for the postgres backend.
	DatabaseURL string

	// FirestoreProjectID is the GCP project. Required for the firestore backend.
	FirestoreProjectID string

	// OracleURL is the base URL of the chat-completions API. Empty disables
	// the oracle and every engine call takes its fallback.
	OracleURL     string
	OracleAPIKey  string
	OracleModel   string
	OracleTimeout time.Duration
	// OracleRPS throttles calls to the oracle. Zero disables throttling.
	OracleRPS float64

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// RegenSeed fixes the regeneration fallback shuffle. Zero derives a seed
	// per trip and day.
	RegenSeed uint64
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// naming the first variable whose value cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
		OracleURL:          os.Getenv("ORACLE_URL"),
		OracleAPIKey:       os.Getenv("ORACLE_API_KEY"),
		OracleModel:        getEnv("ORACLE_MODEL", "gpt-4o-mini"),
	}

	var err error
	if cfg.OracleTimeout, err = time.ParseDuration(getEnv("ORACLE_TIMEOUT", "20s")); err != nil {
		return Config{}, fmt.Errorf("ORACLE_TIMEOUT: %w", err)
	}
	if cfg.OracleRPS, err = strconv.ParseFloat(getEnv("ORACLE_RPS", "2"), 64); err != nil || cfg.OracleRPS < 0 {
		return Config{}, fmt.Errorf("ORACLE_RPS: must be a non-negative number, got %q", os.Getenv("ORACLE_RPS"))
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES: must be a positive integer, got %q", os.Getenv("MAX_BODY_BYTES"))
	}
	if cfg.RegenSeed, err = strconv.ParseUint(getEnv("REGEN_SEED", "0"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("REGEN_SEED: %w", err)
	}

	var missing []string
	switch cfg.StoreBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendFirestore:
		if cfg.FirestoreProjectID == "" {
			missing = append(missing, "FIRESTORE_PROJECT_ID")
		}
	case BackendMemory:
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND: unknown backend %q (want postgres, firestore or memory)", cfg.StoreBackend)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
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

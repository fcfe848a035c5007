// Package config provides centralized default values for Pulso
package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

// loadEnvFile loads environment variables from an optional .env file.
// Values already present in the environment win.
func loadEnvFile() {
	envLoaded.Do(func() {
		_ = godotenv.Load()
	})
}

// getEnvInt reads environment variable with fallback to default
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvString reads environment variable with string fallback
func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// getEnvDuration reads environment variable as duration with fallback
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		// Try as integer seconds
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Upstream snapshot source
	UpstreamWebhookURL string
	UpstreamTimeout    time.Duration

	// Engine defaults
	DefaultWindowDays int
	MinWindowDays     int
	MaxWindowDays     int
	EngineWorkers     int

	// Rules file (classification rules, pricing, risk weights)
	RulesPath string

	// Database
	SQLitePath               string
	TursoDatabase            string
	TursoToken               string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// TTL Configuration
	SnapshotTTL  time.Duration
	DashboardTTL time.Duration
	OverridesTTL time.Duration

	// Cleanup Intervals
	CleanupInterval time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Upstream snapshot source
	UpstreamWebhookURL = getEnvString("UPSTREAM_WEBHOOK_URL", "")
	UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second)

	// Engine defaults
	DefaultWindowDays = getEnvInt("DEFAULT_WINDOW_DAYS", 7)
	MinWindowDays = getEnvInt("MIN_WINDOW_DAYS", 1)
	MaxWindowDays = getEnvInt("MAX_WINDOW_DAYS", 60)
	EngineWorkers = getEnvInt("ENGINE_WORKERS", 8)

	// Rules file
	RulesPath = getEnvString("RULES_PATH", "rules.yaml")

	// Database
	SQLitePath = getEnvString("SQLITE_PATH", "db/pulso.db")
	TursoDatabase = getEnvString("TURSO_DATABASE_URL", "")
	TursoToken = getEnvString("TURSO_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// TTL Configuration
	SnapshotTTL = time.Duration(getEnvInt("SNAPSHOT_TTL_MINUTES", 15)) * time.Minute
	DashboardTTL = time.Duration(getEnvInt("DASHBOARD_TTL_MINUTES", 10)) * time.Minute
	OverridesTTL = time.Duration(getEnvInt("OVERRIDES_TTL_MINUTES", 5)) * time.Minute

	// Cleanup Intervals
	CleanupInterval = time.Duration(getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute
}

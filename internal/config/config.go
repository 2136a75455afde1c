package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	MigrationsPath string

	// Dataset catalog: one CSV per variant, clips served from MediaBaseURL
	MediaBaseURL          string
	ValidationDatasetPath string
	CompleteDatasetPath   string

	// Annotation form version answers are validated against
	SchemaVersion string

	// Accounts
	BcryptCost int

	// Per-user submission throttling (0 disables)
	SubmitRatePerSec float64
	SubmitBurst      int

	// How often the assignment gauges are refreshed (0 disables)
	StatsInterval time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL:    dbURL,
		DBMaxConns:     int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:     int32(getInt("DB_MIN_CONNS", 2)),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),

		MediaBaseURL:          getEnv("MEDIA_BASE_URL", "http://localhost:8081/clips"),
		ValidationDatasetPath: getEnv("DATASET_VALIDATION_CSV", "data/validations.csv"),
		CompleteDatasetPath:   getEnv("DATASET_COMPLETE_CSV", "data/complete.csv"),

		SchemaVersion: getEnv("ANNOTATION_SCHEMA", "gated-likert-v2"),

		BcryptCost: getInt("BCRYPT_COST", 12),

		SubmitRatePerSec: getFloat("SUBMIT_RATE_PER_SEC", 2),
		SubmitBurst:      getInt("SUBMIT_BURST", 5),

		StatsInterval: getDuration("STATS_INTERVAL", 30*time.Second),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

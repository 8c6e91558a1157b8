// Package config loads process configuration the way the teacher's
// cmd/main.go does: godotenv loads a .env file in development, then a
// package-level Env struct is populated from os.Getenv with defaults.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment holds every setting the service reads at startup: the
// catalog/warehouse environment spec.md §6 names, plus the ambient
// HTTP/Redis settings a deployable service needs that spec.md leaves
// external.
type Environment struct {
	Port        string
	Environment string // DEVELOPMENT or PRODUCTION

	CorsAllowedOrigin string

	// Catalog service (spec.md §6).
	MetadataIPAddress string
	MetadataPort      string

	// Warehouse (spec.md §6, §4.8).
	GCPProjectID  string
	ServiceSuffix string
	MaxRows       int
	MaxWorkers    int

	// Ambient.
	JSONLogs      bool
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string

	PostgresDSN   string
	ClickhouseDSN string
	MySQLDSN      string

	JWTSecret string
}

// Env is populated by LoadEnv before any other package reads it, mirroring
// the teacher's config.Env package-level access pattern.
var Env Environment

// LoadEnv loads a .env file if present (a missing file in production is not
// an error, since the real values are then supplied by the environment
// directly) and populates Env from os.Getenv, applying defaults.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}

	Env = Environment{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "DEVELOPMENT"),

		CorsAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "*"),

		MetadataIPAddress: getEnv("METADATA_IP_ADDRESS", "127.0.0.1"),
		MetadataPort:      getEnv("METADATA_PORT", "8090"),

		GCPProjectID:  getEnv("GCP_PROJECT_ID", ""),
		ServiceSuffix: getEnv("SERVICE_SUFFIX", ""),
		MaxRows:       getEnvInt("BIGQUERY_MAX_ROWS", 200000),
		MaxWorkers:    getEnvInt("MAX_WORKERS", 16),

		JSONLogs:      getEnvBool("JSON_LOGS", true),
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		ClickhouseDSN: getEnv("CLICKHOUSE_DSN", ""),
		MySQLDSN:      getEnv("MYSQL_DSN", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

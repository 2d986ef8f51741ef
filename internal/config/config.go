// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the gateway.
type Config struct {
	Port   string
	AppEnv string

	// Object storage (S3-compatible: MinIO locally, anything S3-shaped in production)
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UseSSL       bool
	S3UsePathStyle bool

	// Server-side cap on listing page size; 0 means "no cap, caller decides".
	ListObjectsLimit int

	// APIURL is the public base URL of this gateway, used to build download
	// links inside listing responses, e.g. "https://files.example.com".
	APIURL string

	// RedisURL enables listing caching when set; empty disables caching.
	RedisURL string

	// FrontendPath serves a static single-page frontend when set.
	FrontendPath string
}

// DefaultAPIURL is the development fallback for APIURL. Running with it in
// production makes every download link point at localhost.
const DefaultAPIURL = "http://localhost:3001"

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		Port:   getEnv("PORT", "3001"),
		AppEnv: getEnv("APP_ENV", "development"),

		S3Endpoint:     getEnv("S3_ENDPOINT", "localhost:9000"),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Bucket:       getEnv("S3_BUCKET_NAME", "files"),
		S3AccessKey:    getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretKey:    getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3UseSSL:       getEnv("S3_USE_SSL", "false") == "true",
		S3UsePathStyle: getEnv("S3_USE_PATH_STYLE", "false") == "true",

		ListObjectsLimit: getEnvInt("S3_LISTOBJECTS_LIMIT", 0),

		APIURL:       getEnv("API_URL", DefaultAPIURL),
		RedisURL:     getEnv("REDIS_URL", ""),
		FrontendPath: getEnv("FRONTEND_PATH", ""),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
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
	if err != nil || n < 0 {
		log.Fatalf("config: %s must be a non-negative integer, got %q", key, v)
	}
	return n
}

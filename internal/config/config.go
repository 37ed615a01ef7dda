package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds settings for the service, the worker and the admin CLI.
type Config struct {
	ServerAddr string

	DatabaseURL string
	DBUser      string
	DBPassword  string
	DBHost      string
	DBPort      string
	DBName      string

	// AMQPURL empty means notifications go through the in-memory queue.
	AMQPURL string

	APIBaseURL       string
	SessionFile      string
	EstimateCacheTTL time.Duration
	EstimateTable    string
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	return &Config{
		ServerAddr:       getEnv("SERVER_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBName:           getEnv("DB_NAME", "clinic"),
		AMQPURL:          os.Getenv("AMQP_URL"),
		APIBaseURL:       getEnv("API_BASE_URL", "http://localhost:8080"),
		SessionFile:      getEnv("SESSION_FILE", defaultSessionFile()),
		EstimateCacheTTL: getDuration("ESTIMATE_CACHE_TTL", 5*time.Minute),
		EstimateTable:    getEnv("ESTIMATE_TABLE", "portal"),
	}
}

// DSN prefers DATABASE_URL and otherwise assembles one from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clinic-session.json"
	}
	return filepath.Join(home, ".clinic-session.json")
}

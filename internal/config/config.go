package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	// DefaultCurrency is assigned to products created without an explicit
	// currency code.
	DefaultCurrency string

	DB    DatabaseConfig
	Redis RedisConfig
	Cache CacheConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters. An empty Host disables
// caching entirely: the API keeps serving from the database.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CacheConfig contains TTLs for the catalog caches and the per-operation
// timeout applied to every Redis call so a slow cache cannot stall reads.
type CacheConfig struct {
	ProductTTL time.Duration
	SearchTTL  time.Duration
	FiltersTTL time.Duration
	OpTimeout  time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.DefaultCurrency = getEnv("DEFAULT_CURRENCY", "INR")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Cache TTLs. Product pages change rarely, filter facets even less, and
	// search pages the most, hence the three separate lifetimes.
	var err error
	if cfg.Cache.ProductTTL, err = parseDurationEnv("CACHE_PRODUCT_TTL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid CACHE_PRODUCT_TTL: %w", err)
	}
	if cfg.Cache.SearchTTL, err = parseDurationEnv("CACHE_SEARCH_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid CACHE_SEARCH_TTL: %w", err)
	}
	if cfg.Cache.FiltersTTL, err = parseDurationEnv("CACHE_FILTERS_TTL", "60m"); err != nil {
		return nil, fmt.Errorf("invalid CACHE_FILTERS_TTL: %w", err)
	}
	if cfg.Cache.OpTimeout, err = parseDurationEnv("CACHE_OP_TIMEOUT", "250ms"); err != nil {
		return nil, fmt.Errorf("invalid CACHE_OP_TIMEOUT: %w", err)
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

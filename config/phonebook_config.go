package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers understood by the persistence layer.
const (
	DriverMongoDB  = "mongodb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Storage
	StorageDriver string
	MongoDBURL    string
	MongoDBName   string
	DatabaseURL   string
	DBMaxConns    int

	// Cache (optional)
	RedisURL string
	CacheTTL time.Duration

	// Circuit breaker around the storage gateway
	BreakerEnabled  bool
	BreakerFailures int
	BreakerTimeout  time.Duration

	// HTTP
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	BodyLimit      int
	MetricsPath    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Storage
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverMongoDB)),
		MongoDBURL:    getEnv("MONGODB_URI", ""),
		MongoDBName:   getEnv("MONGODB_DATABASE", "phonebook"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DBMaxConns:    getEnvInt("DB_MAX_CONNS", 10),

		// Cache
		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: time.Duration(getEnvInt("CACHE_TTL_SEC", 60)) * time.Second,

		// Circuit breaker
		BreakerEnabled:  getEnvBool("BREAKER_ENABLED", true),
		BreakerFailures: getEnvInt("BREAKER_FAILURES", 5),
		BreakerTimeout:  time.Duration(getEnvInt("BREAKER_TIMEOUT_SEC", 30)) * time.Second,

		// HTTP
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		ReadTimeout:    time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SEC", 15)) * time.Second,
		WriteTimeout:   time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SEC", 15)) * time.Second,
		BodyLimit:      getEnvInt("BODY_LIMIT_KB", 100) * 1024,
		MetricsPath:    "/metrics",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected storage driver has what it needs to connect.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMongoDB:
		if c.MongoDBURL == "" {
			return errors.New("MONGODB_URI is required for the mongodb storage driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres storage driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	if c.BreakerEnabled && c.BreakerFailures < 1 {
		return errors.New("BREAKER_FAILURES must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"wagering/database"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL   string
	DatabaseName  string
	StorageDriver string // "postgres" or "memory"

	// Wagering configuration
	StartingBalance int64
	MinBet          int64
	SessionTTL      time.Duration // Idle time after which a multi-step game is abandoned
	JanitorInterval time.Duration

	// NATS configuration
	NATSServers string // Empty disables event forwarding

	// Redis configuration (recent players)
	RedisAddr     string // Empty keeps recent players in memory
	RedisPassword string
	RedisDB       int

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Presentation
	Locale string

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// GetDatabaseURL combines the base URL and the database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A .env file is optional; real environment variables win
	_ = godotenv.Load()

	config := &Config{
		// Database
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DatabaseName:  os.Getenv("DATABASE_NAME"),
		StorageDriver: getEnvWithDefault("STORAGE_DRIVER", StorageDriverPostgres),

		// Wagering defaults
		StartingBalance: 1000000,
		MinBet:          100,
		SessionTTL:      time.Hour,
		JanitorInterval: 5 * time.Minute,

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// Redis
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "localhost:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "wagering"),
		OTelExportIntervalMillis: 15000,

		Locale:    getEnvWithDefault("LOCALE", "en"),
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if minBet := os.Getenv("MIN_BET"); minBet != "" {
		if parsed, err := strconv.ParseInt(minBet, 10, 64); err == nil {
			config.MinBet = parsed
		}
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			config.SessionTTL = parsed
		}
	}
	if interval := os.Getenv("JANITOR_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil {
			config.JanitorInterval = parsed
		}
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if parsed, err := strconv.Atoi(db); err == nil {
			config.RedisDB = parsed
		}
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil {
			config.OTelExportIntervalMillis = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// Validate checks the settings the runtime cannot work without
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.MinBet <= 0 {
		return fmt.Errorf("MIN_BET must be positive")
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE cannot be negative")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		StorageDriver:    StorageDriverMemory,
		StartingBalance:  1000000,
		MinBet:           100,
		SessionTTL:       time.Hour,
		JanitorInterval:  time.Minute,
		OTelExporterType: "none",
		OTelServiceName:  "wagering-test",
		Locale:           "en",
		LogLevel:         "info",
		LogFormat:        "text",
		Environment:      "test",
	}
}

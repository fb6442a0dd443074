// Package config provides configuration management for the meal ledger service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Ledger      LedgerConfig
	Sweep       SweepConfig
	Cache       CacheConfig
	Database    DatabaseConfig
	Idempotency IdempotencyConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	RateLimit       int
	RateWindow      time.Duration
	SweepRateLimit  int
	SweepRateWindow time.Duration
	RequestTimeout  time.Duration
	ReadTimeout     time.Duration
	// WriteTimeout bounds a whole response, manual sweeps included.
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	SwaggerUser     string
	SwaggerPass     string
}

// LogConfig holds process log configuration.
type LogConfig struct {
	Level  string
	Pretty bool
}

// LedgerConfig holds the business limits of the order ledger.
type LedgerConfig struct {
	LeaveCap int
	// MaxPeriodDays bounds the length of an order period.
	MaxPeriodDays int
	// MealSlots lists the meals served. Empty means breakfast, lunch and dinner.
	MealSlots []string
}

// SweepConfig holds the schedule and tuning of the background jobs.
type SweepConfig struct {
	Enabled bool
	// Schedule and BillingSchedule are cron expressions with a seconds field.
	Schedule          string
	BillingSchedule   string
	PageSize          int
	Workers           int
	RepairAttendances bool
	OrderTimeout      time.Duration
}

// CacheConfig holds the daily statistics cache configuration.
type CacheConfig struct {
	Size   int
	TTL    time.Duration
	Shards int
}

// DatabaseConfig holds MongoDB configuration.
type DatabaseConfig struct {
	URI          string
	DatabaseName string
	// ActivityTTL is how long activity log entries are kept. Zero keeps
	// the current index untouched.
	ActivityTTL time.Duration
	Enabled     bool
	// CircuitBreaker configuration
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration
}

// IdempotencyConfig holds Idempotency-Key replay configuration.
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// Load creates a Config from environment variables.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			RateLimit:       getEnvInt("RATE_LIMIT", 100),
			RateWindow:      getEnvDuration("RATE_WINDOW", time.Minute),
			SweepRateLimit:  getEnvInt("SWEEP_RATE_LIMIT", 2),
			SweepRateWindow: getEnvDuration("SWEEP_RATE_WINDOW", time.Minute),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 2*time.Minute),
			IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", time.Minute),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSOrigins:     parseCORSOrigins(os.Getenv("CORS_ORIGINS")),
			SwaggerUser:     getEnv("SWAGGER_USER", ""),
			SwaggerPass:     getEnv("SWAGGER_PASS", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
		Ledger: LedgerConfig{
			LeaveCap:      getEnvInt("LEAVE_CAP", 8),
			MaxPeriodDays: getEnvInt("MAX_PERIOD_DAYS", 3660),
			MealSlots:     parseList(os.Getenv("MEAL_SLOTS")),
		},
		Sweep: SweepConfig{
			Enabled:           getEnvBool("SWEEP_ENABLED", true),
			Schedule:          getEnv("SWEEP_SCHEDULE", "0 0 0 * * *"),
			BillingSchedule:   getEnv("BILLING_SCHEDULE", "0 30 0 * * *"),
			PageSize:          getEnvInt("SWEEP_PAGE_SIZE", 200),
			Workers:           getEnvInt("SWEEP_WORKERS", 8),
			RepairAttendances: getEnvBool("SWEEP_REPAIR_ATTENDANCES", false),
			OrderTimeout:      getEnvDuration("SWEEP_ORDER_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			Size:   getEnvInt("CACHE_SIZE", 366),
			TTL:    getEnvDuration("CACHE_TTL", 5*time.Minute),
			Shards: getEnvInt("CACHE_SHARDS", 8),
		},
		Database: DatabaseConfig{
			URI:                            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			DatabaseName:                   getEnv("MONGODB_DATABASE", "meal_ledger"),
			ActivityTTL:                    getEnvDuration("MONGODB_ACTIVITY_TTL", 30*24*time.Hour),
			Enabled:                        getEnvBool("MONGODB_ENABLED", false),
			CircuitBreakerFailureThreshold: getEnvInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
			CircuitBreakerSuccessThreshold: getEnvInt("CIRCUIT_BREAKER_SUCCESS_THRESHOLD", 2),
			CircuitBreakerTimeout:          getEnvDuration("CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
		},
		Idempotency: IdempotencyConfig{
			Enabled: getEnvBool("IDEMPOTENCY_ENABLED", true),
			TTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

// parseList splits a comma separated value, dropping blanks.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.ToLower(strings.TrimSpace(p)); v != "" {
			result = append(result, v)
		}
	}
	return result
}

func parseCORSOrigins(s string) []string {
	// Default origins for local development
	defaults := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if s == "" {
		return defaults
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts)+len(defaults))
	result = append(result, defaults...)
	for _, p := range parts {
		if origin := strings.TrimSpace(p); origin != "" {
			result = append(result, origin)
		}
	}
	return result
}

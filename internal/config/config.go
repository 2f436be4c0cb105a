package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pulsedesk/pulsedesk/internal/domain"
)

// Config represents application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Logging  LoggingConfig  `json:"logging"`
	SLA      SLAConfig      `json:"sla"`
	Compute  ComputeConfig  `json:"compute"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Environment  string        `json:"environment"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL            string        `json:"url"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleTime    time.Duration `json:"max_idle_time"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
}

// RedisConfig represents the report cache configuration
type RedisConfig struct {
	CacheEnabled bool          `json:"cache_enabled"`
	URL          string        `json:"url"`
	CacheTTL     time.Duration `json:"cache_ttl"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// SLAConfig carries the tenant's metric configuration: the office-hours
// calendar, the per-metric targets and the enabled-metric selection. It is
// read once at startup and stays immutable for every computation batch.
type SLAConfig struct {
	OfficeHours domain.OfficeHoursConfig `json:"office_hours"`
	Targets     domain.SLATargets        `json:"targets"`
	Enabled     domain.EnabledMetrics    `json:"enabled"`
}

// ComputeConfig tunes the batch computation pipeline
type ComputeConfig struct {
	Workers int `json:"workers"`
}

// Load reads configuration from the environment, with an optional .env file
func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleTime:    getEnvDuration("DB_MAX_IDLE_TIME", 5*time.Minute),
			ConnectTimeout: getEnvDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			CacheEnabled: getEnvBool("REPORT_CACHE_ENABLED", false),
			URL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
			CacheTTL:     getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		SLA: SLAConfig{
			OfficeHours: domain.OfficeHoursConfig{
				Start:       getEnv("OFFICE_HOURS_START", "09:00"),
				End:         getEnv("OFFICE_HOURS_END", "17:00"),
				WorkingDays: getEnvIntSlice("OFFICE_WORKING_DAYS", []int{1, 2, 3, 4, 5}),
				Timezone:    getEnv("OFFICE_TIMEZONE", "UTC"),
			},
			Targets: domain.SLATargets{
				PickupSeconds:        getEnvInt64("SLA_PICKUP_TARGET_SECONDS", 120),
				FirstResponseSeconds: getEnvInt64("SLA_FIRST_RESPONSE_TARGET_SECONDS", 600),
				AvgResponseSeconds:   getEnvInt64("SLA_AVG_RESPONSE_TARGET_SECONDS", 900),
				ResolutionSeconds:    getEnvInt64("SLA_RESOLUTION_TARGET_SECONDS", 28800),
				ComplianceTargetPct:  getEnvFloat("SLA_COMPLIANCE_TARGET_PCT", 90),
			},
			Enabled: domain.EnabledMetrics{
				Pickup:        getEnvBool("SLA_ENABLE_PICKUP", true),
				FirstResponse: getEnvBool("SLA_ENABLE_FIRST_RESPONSE", true),
				AvgResponse:   getEnvBool("SLA_ENABLE_AVG_RESPONSE", true),
				Resolution:    getEnvBool("SLA_ENABLE_RESOLUTION", true),
			},
		},
		Compute: ComputeConfig{
			Workers: getEnvInt("COMPUTE_WORKERS", 8),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration. Office-hours invariants are checked
// here so a bad calendar fails at startup, not mid-batch.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if err := c.SLA.OfficeHours.Validate(); err != nil {
		return fmt.Errorf("invalid office hours config: %w", err)
	}
	return nil
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvIntSlice parses a comma-separated list of integers, e.g. "1,2,3,4,5"
func getEnvIntSlice(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []int
	for _, part := range strings.Split(value, ",") {
		parsed, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return defaultValue
		}
		result = append(result, parsed)
	}
	return result
}

package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Message bus configuration
	Bus BusConfig

	// Customer directory configuration
	Customers CustomerConfig

	// Redis cache configuration
	Redis RedisConfig

	// Ticket workflow configuration
	Tickets TicketConfig

	// Notification configuration
	Notifications NotificationConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration
	CORS CORSConfig

	// WebSocket configuration
	WebSocket WebSocketConfig

	// Logging configuration
	Logging LoggingConfig

	// Tracing configuration
	Telemetry TelemetryConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// BusConfig holds message bus configuration
type BusConfig struct {
	Driver              string // memory, kafka
	KafkaBrokers        []string
	Workers             int
	AlarmsTopic         string
	TicketsTopic        string
	NotificationsTopic  string
	TicketGroupID       string
	NotificationGroupID string
	LiveFeedGroupID     string
}

// CustomerConfig holds customer directory configuration.
// An empty URL selects the built-in static directory.
type CustomerConfig struct {
	DirectoryURL  string
	LookupTimeout time.Duration
}

// RedisConfig holds the customer cache configuration.
// An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// TicketConfig holds ticket workflow configuration
type TicketConfig struct {
	FanoutConcurrency int
}

// NotificationConfig holds notification configuration
type NotificationConfig struct {
	NotifyOnAlarms bool
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
	PingInterval    time.Duration
	PongWait        time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRatio  float64
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return FromEnv()
}

// FromEnv builds and validates the configuration from the process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Bus: BusConfig{
			Driver:              strings.ToLower(getEnvOrDefault("BUS_DRIVER", "memory")),
			KafkaBrokers:        getStringSliceOrDefault("KAFKA_BROKERS", nil),
			Workers:             getIntOrDefault("BUS_WORKERS", 8),
			AlarmsTopic:         getEnvOrDefault("TOPIC_ALARMS", "alarms"),
			TicketsTopic:        getEnvOrDefault("TOPIC_TICKETS", "tickets"),
			NotificationsTopic:  getEnvOrDefault("TOPIC_NOTIFICATIONS", "notifications"),
			TicketGroupID:       getEnvOrDefault("TICKET_GROUP_ID", "ticket-service"),
			NotificationGroupID: getEnvOrDefault("NOTIFICATION_GROUP_ID", "notification-service"),
			LiveFeedGroupID:     getEnvOrDefault("LIVE_FEED_GROUP_ID", "live-feed"),
		},
		Customers: CustomerConfig{
			DirectoryURL:  os.Getenv("CUSTOMER_DIRECTORY_URL"),
			LookupTimeout: getDurationOrDefault("CUSTOMER_LOOKUP_TIMEOUT", 2*time.Second),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntOrDefault("REDIS_DB", 0),
			CacheTTL: getDurationOrDefault("CUSTOMER_CACHE_TTL", 5*time.Minute),
		},
		Tickets: TicketConfig{
			FanoutConcurrency: getIntOrDefault("TICKET_FANOUT_CONCURRENCY", 4),
		},
		Notifications: NotificationConfig{
			NotifyOnAlarms: getBoolOrDefault("NOTIFY_ON_ALARMS", false),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  getStringSliceOrDefault("WS_ALLOWED_ORIGINS", []string{}),
			ReadBufferSize:  getIntOrDefault("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getIntOrDefault("WS_WRITE_BUFFER_SIZE", 1024),
			PingInterval:    getDurationOrDefault("WS_PING_INTERVAL", 54*time.Second),
			PongWait:        getDurationOrDefault("WS_PONG_WAIT", 60*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolOrDefault("OTEL_ENABLED", false),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio:  getFloatOrDefault("OTEL_SAMPLING_RATIO", 1),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "incident-desk"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	// Bus selection
	switch c.Bus.Driver {
	case "memory":
	case "kafka":
		if len(c.Bus.KafkaBrokers) == 0 {
			errs = append(errs, "KAFKA_BROKERS is required when BUS_DRIVER=kafka")
		}
	default:
		errs = append(errs, fmt.Sprintf("BUS_DRIVER must be memory or kafka, got %q", c.Bus.Driver))
	}

	if c.Bus.Workers < 1 {
		errs = append(errs, "BUS_WORKERS must be at least 1")
	}

	if c.Bus.AlarmsTopic == "" || c.Bus.TicketsTopic == "" || c.Bus.NotificationsTopic == "" {
		errs = append(errs, "TOPIC_ALARMS, TOPIC_TICKETS and TOPIC_NOTIFICATIONS cannot be empty")
	}

	// Logical validations
	if c.Customers.LookupTimeout <= 0 {
		errs = append(errs, "CUSTOMER_LOOKUP_TIMEOUT must be positive")
	}

	if c.Tickets.FanoutConcurrency < 1 {
		errs = append(errs, "TICKET_FANOUT_CONCURRENCY must be at least 1")
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, "OTEL_SAMPLING_RATIO must be between 0 and 1")
	}

	// Security validations
	if c.App.Environment == "production" && len(c.WebSocket.AllowedOrigins) == 0 {
		errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	redisPassword := ""
	if c.Redis.Password != "" {
		redisPassword = "[REDACTED]"
	}
	return fmt.Sprintf(
		"Config{Server: %s, Bus: %s %v, Directory: %s, Redis: %s password=%s, RateLimit: %v, Environment: %s}",
		c.Server.Port,
		c.Bus.Driver,
		c.Bus.KafkaBrokers,
		redactURL(c.Customers.DirectoryURL),
		c.Redis.Addr,
		redisPassword,
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

// redactURL hides credentials embedded in a URL
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		u.User = url.User("REDACTED")
	}
	return u.String()
}

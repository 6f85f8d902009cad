package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Source    SourceConfig    `mapstructure:"source"`
	Publisher PublisherConfig `mapstructure:"publisher"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`             // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort        int           `mapstructure:"http_port"`        // HTTP server port
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`     // Fiber read timeout
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`    // Fiber write timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // Grace period for in-flight requests
	BodyLimit       int           `mapstructure:"body_limit"`       // Max request body in bytes
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// AnalyticsConfig holds the request defaults and test parameters handed to
// the analytics packages. Values are read once at startup.
type AnalyticsConfig struct {
	DefaultSensitivity   string   `mapstructure:"default_sensitivity"`   // low, medium, high
	AnomalyMethods       []string `mapstructure:"anomaly_methods"`       // detector pipeline, in merge order
	CorrelationThreshold float64  `mapstructure:"correlation_threshold"` // |r| reported as a significant pair
	ForecastHorizon      int      `mapstructure:"forecast_horizon"`      // linear forecast steps
	MinSampleSize        int      `mapstructure:"min_sample_size"`       // per A/B arm
	MinConversions       int      `mapstructure:"min_conversions"`       // per A/B arm, conversion tests
	Alpha                float64  `mapstructure:"alpha"`                 // significance level
	ConfidenceZ          float64  `mapstructure:"confidence_z"`          // z for A/B confidence intervals
	MaxSeriesLength      int      `mapstructure:"max_series_length"`     // reject larger inline series
}

// SourceConfig selects and configures the data-retrieval backend
type SourceConfig struct {
	Type         string               `mapstructure:"type"`          // memory (default), redis, postgres, excel
	FetchTimeout time.Duration        `mapstructure:"fetch_timeout"` // per-fetch timeout
	Concurrency  int                  `mapstructure:"concurrency"`   // parallel fetches for multi-metric requests
	Redis        RedisSourceConfig    `mapstructure:"redis"`
	Postgres     PostgresSourceConfig `mapstructure:"postgres"`
	Excel        ExcelSourceConfig    `mapstructure:"excel"`
}

// RedisSourceConfig for snappy-compressed series blobs in Redis
type RedisSourceConfig struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	KeyPrefix   string `mapstructure:"key_prefix"`  // keys are <prefix>:series:<metric> and <prefix>:experiment:<name>:<variant>
	Compression string `mapstructure:"compression"` // none, snappy (default) for blobs written by insight
}

// PostgresSourceConfig for warehouse tables
type PostgresSourceConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ExcelSourceConfig for a workbook with one sheet per metric
type ExcelSourceConfig struct {
	Path            string `mapstructure:"path"`
	ExperimentSheet string `mapstructure:"experiment_sheet"` // default: experiments
}

// PublisherConfig represents result event publishing configuration
type PublisherConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Type          string `mapstructure:"type"`           // nats (default), redis, kafka, memory
	URL           string `mapstructure:"url"`            // nats://localhost:4222, redis://localhost:6379
	Username      string `mapstructure:"username"`       // Optional authentication
	Password      string `mapstructure:"password"`       // Optional authentication
	SubjectPrefix string `mapstructure:"subject_prefix"` // events go to <prefix>.<kind>

	// Redis-specific options
	RedisDB     int    `mapstructure:"redis_db"`
	RedisStream string `mapstructure:"redis_stream"` // stream name prefix

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics config: %w", err)
	}

	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source config: %w", err)
	}

	if err := c.Publisher.Validate(); err != nil {
		return fmt.Errorf("publisher config: %w", err)
	}

	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("auth config: api_keys is required when auth is enabled")
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must not be negative")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}

// Validate validates analytics configuration
func (c *AnalyticsConfig) Validate() error {
	switch c.DefaultSensitivity {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("analytics.default_sensitivity must be one of: low, medium, high")
	}

	if c.CorrelationThreshold < 0 || c.CorrelationThreshold > 1 {
		return fmt.Errorf("analytics.correlation_threshold must be within [0, 1]")
	}

	if c.ForecastHorizon < 0 {
		return fmt.Errorf("analytics.forecast_horizon must not be negative")
	}

	if c.MinSampleSize < 1 {
		return fmt.Errorf("analytics.min_sample_size must be at least 1")
	}

	if c.MinConversions < 0 {
		return fmt.Errorf("analytics.min_conversions must not be negative")
	}

	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("analytics.alpha must be within (0, 1)")
	}

	if c.ConfidenceZ <= 0 {
		return fmt.Errorf("analytics.confidence_z must be positive")
	}

	return nil
}

// Validate validates source configuration
func (c *SourceConfig) Validate() error {
	switch c.Type {
	case "", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("source.redis.addr is required")
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("source.postgres.dsn is required")
		}
	case "excel":
		if c.Excel.Path == "" {
			return fmt.Errorf("source.excel.path is required")
		}
	default:
		return fmt.Errorf("source.type must be one of: memory, redis, postgres, excel")
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("source.concurrency must be at least 1")
	}

	return nil
}

// Validate validates publisher configuration
func (c *PublisherConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch c.Type {
	case "", "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("publisher.url is required")
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("publisher.kafka_brokers is required")
		}
	case "memory":
	default:
		return fmt.Errorf("publisher.type must be one of: nats, redis, kafka, memory")
	}

	if c.SubjectPrefix == "" {
		return fmt.Errorf("publisher.subject_prefix is required")
	}

	return nil
}

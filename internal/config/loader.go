package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. INSIGHT_SERVER_HTTP_PORT.
const EnvPrefix = "INSIGHT"

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")            // Current directory
		v.AddConfigPath("./configs")    // Project configs directory
		v.AddConfigPath("/etc/insight") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults mirrors DefaultConfig so a missing file still yields a valid config
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)

	// Auth defaults
	v.SetDefault("auth.enabled", d.Auth.Enabled)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.time_format", d.Logging.TimeFormat)

	// Analytics defaults
	v.SetDefault("analytics.default_sensitivity", d.Analytics.DefaultSensitivity)
	v.SetDefault("analytics.anomaly_methods", d.Analytics.AnomalyMethods)
	v.SetDefault("analytics.correlation_threshold", d.Analytics.CorrelationThreshold)
	v.SetDefault("analytics.forecast_horizon", d.Analytics.ForecastHorizon)
	v.SetDefault("analytics.min_sample_size", d.Analytics.MinSampleSize)
	v.SetDefault("analytics.min_conversions", d.Analytics.MinConversions)
	v.SetDefault("analytics.alpha", d.Analytics.Alpha)
	v.SetDefault("analytics.confidence_z", d.Analytics.ConfidenceZ)
	v.SetDefault("analytics.max_series_length", d.Analytics.MaxSeriesLength)

	// Source defaults
	v.SetDefault("source.type", d.Source.Type)
	v.SetDefault("source.fetch_timeout", d.Source.FetchTimeout)
	v.SetDefault("source.concurrency", d.Source.Concurrency)
	v.SetDefault("source.redis.addr", d.Source.Redis.Addr)
	v.SetDefault("source.redis.key_prefix", d.Source.Redis.KeyPrefix)
	v.SetDefault("source.redis.compression", d.Source.Redis.Compression)
	v.SetDefault("source.postgres.max_open_conns", d.Source.Postgres.MaxOpenConns)
	v.SetDefault("source.postgres.max_idle_conns", d.Source.Postgres.MaxIdleConns)
	v.SetDefault("source.postgres.conn_max_lifetime", d.Source.Postgres.ConnMaxLifetime)
	v.SetDefault("source.excel.experiment_sheet", d.Source.Excel.ExperimentSheet)

	// Publisher defaults
	v.SetDefault("publisher.enabled", d.Publisher.Enabled)
	v.SetDefault("publisher.type", d.Publisher.Type)
	v.SetDefault("publisher.url", d.Publisher.URL)
	v.SetDefault("publisher.subject_prefix", d.Publisher.SubjectPrefix)
	v.SetDefault("publisher.redis_stream", d.Publisher.RedisStream)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			HTTPPort:        5580,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       8 * 1024 * 1024,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
			TimeFormat: "RFC3339",
		},
		Analytics: AnalyticsConfig{
			DefaultSensitivity:   "medium",
			AnomalyMethods:       []string{"zscore", "rate_of_change", "pattern"},
			CorrelationThreshold: 0.7,
			ForecastHorizon:      3,
			MinSampleSize:        100,
			MinConversions:       10,
			Alpha:                0.05,
			ConfidenceZ:          1.96,
			MaxSeriesLength:      100000,
		},
		Source: SourceConfig{
			Type:         "memory",
			FetchTimeout: 10 * time.Second,
			Concurrency:  4,
			Redis: RedisSourceConfig{
				Addr:        "localhost:6379",
				KeyPrefix:   "insight",
				Compression: "snappy",
			},
			Postgres: PostgresSourceConfig{
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 30 * time.Minute,
			},
			Excel: ExcelSourceConfig{
				ExperimentSheet: "experiments",
			},
		},
		Publisher: PublisherConfig{
			Enabled:       false,
			Type:          "nats",
			URL:           "nats://localhost:4222",
			SubjectPrefix: "insight.results",
			RedisStream:   "insight",
		},
	}
}

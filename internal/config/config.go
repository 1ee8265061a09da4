// Package config defines the global configuration structure for the TrizzaOne
// telemetry service. Configuration is loaded once at process initialization
// and is immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes the application to fail
// immediately on startup.
package config

import (
	"time"

	"trizzaone/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the TrizzaOne service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"trizzaone-telemetry"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	AWS           AWSConfig
	Simulation    SimulationConfig
	Anomaly       AnomalyConfig
	Query         QueryConfig
	Archive       ArchiveConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// RedisConfig holds the optional Redis connection used by the dispatcher's
// shared seen-event store. When Addr is empty, the dispatcher falls back to
// its in-process store.
type RedisConfig struct {
	Addr     string       `envconfig:"REDIS_ADDR"`
	Password SecretString `envconfig:"REDIS_PASSWORD"`
	DB       int          `envconfig:"REDIS_DB" default:"0"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region        string `envconfig:"AWS_REGION" default:"us-east-1"`
	AlertQueueURL string `envconfig:"SQS_ALERTS"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// SimulationConfig tunes the synthetic telemetry session.
type SimulationConfig struct {
	Enabled       bool          `envconfig:"SIM_ENABLED" default:"true"`
	TickInterval  time.Duration `envconfig:"SIM_TICK_INTERVAL" default:"5s"`
	PollInterval  time.Duration `envconfig:"SIM_POLL_INTERVAL" default:"30s"`
	StoreCapacity int           `envconfig:"SIM_STORE_CAPACITY" default:"100"`

	// Dispatcher policy
	PushEnabled    bool          `envconfig:"PUSH_NOTIFICATIONS_ENABLED" default:"true"`
	DedupCooldown  time.Duration `envconfig:"ALERT_DEDUP_COOLDOWN" default:"10m"`
	RecentEventCap int           `envconfig:"RECENT_EVENT_CAP" default:"5"`
}

// AnomalyConfig holds the remote anomaly classifier endpoint settings.
type AnomalyConfig struct {
	URL     string        `envconfig:"ANOMALY_API_URL"`
	APIKey  SecretString  `envconfig:"ANOMALY_API_KEY"`
	Timeout time.Duration `envconfig:"ANOMALY_API_TIMEOUT" default:"10s"`
}

// QueryConfig holds the remote natural-language intent endpoint settings.
type QueryConfig struct {
	URL     string        `envconfig:"QUERY_API_URL"`
	APIKey  SecretString  `envconfig:"QUERY_API_KEY"`
	Timeout time.Duration `envconfig:"QUERY_API_TIMEOUT" default:"15s"`
}

// ArchiveConfig tunes the telemetry archiver.
type ArchiveConfig struct {
	Retention time.Duration `envconfig:"ARCHIVE_RETENTION" default:"168h"`
	Directory string        `envconfig:"ARCHIVE_DIR" default:"/tmp/trizzaone-archive"`
}

// ObservabilityConfig holds telemetry and monitoring settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"TrizzaOne"`
	MetricsEnabled  bool   `envconfig:"METRICS_ENABLED" default:"false"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)

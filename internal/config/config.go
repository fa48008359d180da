// Package config loads the scheduler and processor configuration from the
// environment once per cold start. Values resolve in priority order:
//
//	OS environment -> .env file -> AWS SSM Parameter Store (_SSM_PARAM pointers)
//
// A missing required value or an invalid format fails the load.
package config

import (
	"log/slog"
	"strings"
	"time"

	"appointments/internal/db"
	"appointments/internal/types"
)

// SecretString keeps secrets out of logs.
type SecretString = types.SecretString

// SchedulerConfig configures the scheduler: action API, local HTTP mode and
// the confirmation queue consumer.
type SchedulerConfig struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"appointment-scheduler"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	TableName   string        `envconfig:"APPOINTMENT_TABLE_NAME" validate:"required"`
	TopicARN    string        `envconfig:"SNS_TOPIC_ARN" validate:"required"`
	Port        string        `envconfig:"PORT" default:"8080" validate:"numeric"`
	HTTPTimeout time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"29s"`

	AWS           AWSConfig
	Observability ObservabilityConfig
	Breaker       BreakerConfig

	Build BuildInfo `ignored:"true"`
}

// ProcessorConfig configures one per-country queue processor.
type ProcessorConfig struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"appointment-processor"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	QueueName    string `envconfig:"SQS_QUEUE_NAME" validate:"required"`
	EventBusName string `envconfig:"EVENT_BUS_NAME" default:"default"`
	BucketName   string `envconfig:"BUCKET_NAME" validate:"required"`

	Database      DatabaseConfig
	AWS           AWSConfig
	Observability ObservabilityConfig
	Breaker       BreakerConfig

	Build BuildInfo `ignored:"true"`
}

// DatabaseConfig holds the connection string and pool tuning.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int32         `envconfig:"DB_MAX_CONNS" default:"4"`
	MinConns          int32         `envconfig:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// PoolOptions converts the tuning values for db.NewPool.
func (c DatabaseConfig) PoolOptions() db.PoolOptions {
	return db.PoolOptions{
		MaxConns:          c.MaxConns,
		MinConns:          c.MinConns,
		MaxConnLifetime:   c.MaxConnLifetime,
		HealthCheckPeriod: c.HealthCheckPeriod,
	}
}

// AWSConfig holds the region and the LocalStack endpoint override.
type AWSConfig struct {
	Region      string `envconfig:"AWS_REGION" default:"us-east-1"`
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// ObservabilityConfig toggles CloudWatch metrics.
type ObservabilityConfig struct {
	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// BreakerConfig tunes the publisher circuit breakers.
type BreakerConfig struct {
	ConsecutiveFailures uint32        `envconfig:"BREAKER_CONSECUTIVE_FAILURES" default:"5" validate:"min=1"`
	OpenTimeout         time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// SlogLevel maps a LOG_LEVEL value to a slog.Level. Unknown values log at info.
func SlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	ErrValidation    ConfigErrorType = "VALIDATION_FAILED"
	ErrParsing       ConfigErrorType = "PARSING_FAILED"
)

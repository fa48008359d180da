// Package main is the entrypoint for a per-country appointment processor.
//
// The processor is triggered by its country's SQS queue. Each message is
// recorded in PostgreSQL and archived to S3, after which a DB_SAVE_SUCCESS
// event is put on the event bus for the scheduler to complete the
// appointment.
//
// With APP_ENV=local a single SQS event is read from stdin instead of
// starting the Lambda runtime.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"appointments/internal/archive"
	"appointments/internal/config"
	"appointments/internal/core"
	"appointments/internal/db"
	"appointments/internal/messaging"
	"appointments/internal/metrics"
	"appointments/internal/processor"
	"appointments/internal/types"
)

const dependencyCheckTimeout = 5 * time.Second

// slogAdapter wraps *slog.Logger to implement types.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := context.Background()

	provider, err := secretProvider(ctx)
	if err != nil {
		logger.Error("failed to build secret provider", "error", err)
		os.Exit(1)
	}
	cfg, err := config.LoadProcessorConfig(provider)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.SlogLevel(cfg.LogLevel),
	})).With("service", cfg.Service, "queue", cfg.QueueName)
	logger.Info("processor initializing (cold start)",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"event_bus", cfg.EventBusName,
		"bucket", cfg.BucketName,
	)

	awsCfg, err := cfg.AWS.Load(ctx)
	if err != nil {
		logger.Error("failed to load AWS SDK config", "error", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg.Database.URL.Unmask(), cfg.Database.PoolOptions())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	checkDependencies(ctx, logger,
		db.PoolProbe{Pool: pool},
		archive.BucketProbe{Client: s3.NewFromConfig(awsCfg), Bucket: cfg.BucketName},
	)

	handler := newHandler(cfg, awsCfg, db.NewRecordRepository(pool), logger)

	if cfg.Environment == "local" {
		if err := runLocal(ctx, handler, os.Stdin); err != nil {
			logger.Error("handler execution failed", "error", err)
			os.Exit(1)
		}
		logger.Info("handler execution completed successfully")
		return
	}

	lambda.Start(handler.Handle)
}

func newHandler(cfg *config.ProcessorConfig, awsCfg aws.Config, store processor.RecordStore, logger *slog.Logger) *processor.Handler {
	typedLogger := &slogAdapter{logger: logger}

	breaker := messaging.DefaultBreakerSettings()
	breaker.ConsecutiveFailures = cfg.Breaker.ConsecutiveFailures
	breaker.Timeout = cfg.Breaker.OpenTimeout

	archiver := archive.NewS3Archiver(s3.NewFromConfig(awsCfg), cfg.BucketName, typedLogger.With("component", "archive"))
	publisher := messaging.NewEventPublisher(eventbridge.NewFromConfig(awsCfg), cfg.EventBusName, breaker, typedLogger.With("component", "eventbridge"))
	save := processor.NewSaveMessage(store, archiver, publisher, typedLogger)

	var m processor.Metrics
	if cfg.Observability.MetricsEnabled {
		m = metrics.NewCloudWatchMetrics(cloudwatch.NewFromConfig(awsCfg), typedLogger.With("component", "metrics"))
	}

	mapper := processor.NewSQSEventMapper(cfg.QueueName, types.RealClock{})
	return processor.NewHandler(mapper, save, m, typedLogger)
}

// checkDependencies runs each probe once at cold start. Failures are logged,
// not fatal: the queue redelivers anything that fails while a dependency is
// down.
func checkDependencies(ctx context.Context, logger *slog.Logger, probes ...core.HealthProbe) int {
	ctx, cancel := context.WithTimeout(ctx, dependencyCheckTimeout)
	defer cancel()

	failed := 0
	for _, p := range probes {
		if err := p.Check(ctx); err != nil {
			failed++
			logger.Warn("dependency check failed", "dependency", p.Name(), "error", err)
		}
	}
	return failed
}

// runLocal feeds one SQS event JSON document from r to the handler.
func runLocal(ctx context.Context, h *processor.Handler, r io.Reader) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read event: %w", err)
	}
	if len(payload) == 0 {
		return fmt.Errorf("no event received on stdin")
	}
	var event events.SQSEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode SQS event: %w", err)
	}
	return h.Handle(ctx, event)
}

func secretProvider(ctx context.Context) (config.SecretProvider, error) {
	if os.Getenv("APP_ENV") == "local" {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SSM: %w", err)
	}
	return config.NewSSMProvider(ssm.NewFromConfig(awsCfg)), nil
}

// Package main is the entrypoint for the appointment scheduler.
//
// Inside AWS Lambda a single function serves both triggers: API gateway
// action envelopes ({"action": ..., "data": ...}) and the confirmation queue
// batches. Outside Lambda it runs the same use cases behind a local chi HTTP
// server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"appointments/internal/appointment"
	"appointments/internal/config"
	"appointments/internal/core"
	"appointments/internal/dynamo"
	"appointments/internal/handlers"
	"appointments/internal/messaging"
	"appointments/internal/metrics"
	"appointments/internal/scheduling"
	"appointments/internal/types"
)

// slogAdapter wraps *slog.Logger to implement types.Logger, whose With must
// return types.Logger.
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
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// app holds everything wired during cold start.
type app struct {
	cfg        *config.SchedulerConfig
	logger     *slog.Logger
	actions    *handlers.ActionController
	dispatcher *handlers.Dispatcher
	server     *core.Server
}

func run() error {
	ctx := context.Background()

	provider, err := secretProvider(ctx)
	if err != nil {
		return err
	}
	cfg, err := config.LoadSchedulerConfig(provider)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.SlogLevel(cfg.LogLevel),
	})).With("service", cfg.Service)
	logger.Info("scheduler starting (cold start)",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"table", cfg.TableName,
	)

	awsCfg, err := cfg.AWS.Load(ctx)
	if err != nil {
		return err
	}

	a := wire(cfg, awsCfg, logger)

	if isLambdaEnvironment() {
		logger.Info("starting Lambda runtime")
		lambda.Start(a.dispatcher.Handle)
		return nil
	}
	return runHTTPServer(a)
}

func wire(cfg *config.SchedulerConfig, awsCfg aws.Config, logger *slog.Logger) *app {
	typedLogger := &slogAdapter{logger: logger}
	ddb := dynamodb.NewFromConfig(awsCfg)
	snsClient := sns.NewFromConfig(awsCfg)

	breaker := messaging.DefaultBreakerSettings()
	breaker.ConsecutiveFailures = cfg.Breaker.ConsecutiveFailures
	breaker.Timeout = cfg.Breaker.OpenTimeout

	dateValidator := appointment.ISODateValidator{}
	repo := dynamo.NewRepository(ddb, cfg.TableName, dateValidator, typedLogger.With("component", "dynamo"))
	notifier := messaging.NewSNSNotifier(snsClient, cfg.TopicARN, breaker, typedLogger.With("component", "sns"))

	register := scheduling.NewRegisterAppointment(repo, notifier, dateValidator, typedLogger)
	find := scheduling.NewFindAppointments(repo, typedLogger)
	process := scheduling.NewProcessNotification(repo, typedLogger)

	srv := core.NewServer(logger)
	srv.RequestTimeout = cfg.HTTPTimeout

	var m handlers.Metrics
	if cfg.Observability.MetricsEnabled {
		cw := metrics.NewCloudWatchMetrics(cloudwatch.NewFromConfig(awsCfg), typedLogger.With("component", "metrics"))
		m = cw
		srv.Metrics = cw
	}

	actions := handlers.NewActionController(register, find, srv.Validator, m, typedLogger)
	notifications := handlers.NewNotificationController(process, srv.Validator, m, typedLogger)

	srv.HealthProbes = []core.HealthProbe{
		dynamo.TableProbe{Client: ddb, Table: cfg.TableName},
		messaging.TopicProbe{Client: snsClient, TopicARN: cfg.TopicARN},
	}
	srv.Registrars = append(srv.Registrars, actions.Routes)
	srv.MountRoutes()

	return &app{
		cfg:        cfg,
		logger:     logger,
		actions:    actions,
		dispatcher: handlers.NewDispatcher(actions, notifications, typedLogger),
		server:     srv,
	}
}

// secretProvider returns an SSM-backed provider outside local development.
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

// isLambdaEnvironment reports whether the process runs inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasServerPort := os.LookupEnv("_LAMBDA_SERVER_PORT")
	return hasRuntimeAPI || hasServerPort
}

func runHTTPServer(a *app) error {
	addr := ":" + a.cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		a.logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info("server stopped cleanly")
	return nil
}

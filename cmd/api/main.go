// Package main is the entry point of the OMC gateway API.
//
// It loads the configuration, assembles the processing core and serves the
// webhook, the delivery provider callback and the template preview over
// HTTP. When SQS_EVENTS is set, received events are queued for the events
// worker instead of being processed inline.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
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

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"

	"omc/internal/api/handlers"
	"omc/internal/config"
	"omc/internal/core"
	"omc/internal/external"
	"omc/internal/processing"
	"omc/internal/queue"
	"omc/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("omc gateway starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	clients, err := newAWSClients(context.Background(), cfg)
	if err != nil {
		return err
	}

	srv, err := buildServer(cfg, logger, clients)
	if err != nil {
		return err
	}
	return runHTTPServer(srv, cfg, logger)
}

// awsClients holds the optional AWS clients. Nil fields disable the feature.
type awsClients struct {
	cloudWatch processing.CloudWatchClient
	sqs        queue.SQSSender
}

func newAWSClients(ctx context.Context, cfg *config.Config) (awsClients, error) {
	var clients awsClients
	if !cfg.Observability.EnableMetrics && cfg.Queue.EventsQueueURL == "" {
		return clients, nil
	}

	awsCfg, err := queue.LoadAWSConfig(ctx, cfg.Queue)
	if err != nil {
		return clients, err
	}
	if cfg.Observability.EnableMetrics {
		clients.cloudWatch = cloudwatch.NewFromConfig(awsCfg)
	}
	if cfg.Queue.EventsQueueURL != "" {
		clients.sqs = sqs.NewFromConfig(awsCfg)
	}
	return clients, nil
}

// buildServer wires the processing core into a mounted core.Server.
func buildServer(cfg *config.Config, logger *slog.Logger, clients awsClients) (*core.Server, error) {
	typedLogger := types.NewSlogLogger(logger)

	registry, err := external.NewClientRegistry(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating client registry: %w", err)
	}

	var metrics processing.Metrics = processing.NopMetrics{}
	if clients.cloudWatch != nil {
		metrics = processing.NewCloudWatchMetrics(clients.cloudWatch, cfg.Observability.MetricNamespace, typedLogger)
	}

	components, err := processing.NewComponents(cfg, registry, metrics, typedLogger)
	if err != nil {
		return nil, fmt.Errorf("assembling processing core: %w", err)
	}

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	var publisher handlers.EventPublisher
	if clients.sqs != nil {
		p := queue.NewEventPublisher(clients.sqs, cfg.Queue.EventsQueueURL, logger)
		publisher = p
		srv.HealthProbes = append(srv.HealthProbes, p)
		logger.Info("events are queued for the events worker", "queue_url", cfg.Queue.EventsQueueURL)
	}

	eventsHandler := handlers.NewEventsHandler(components.Orchestrator, publisher, logger)
	notifyHandler := handlers.NewNotifyHandler(components.Reporter, components.Sender, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Route("/events", eventsHandler.RegisterRoutes)
		notifyHandler.RegisterRoutes(r)
	})
	srv.MountRoutes()
	return srv, nil
}

// runHTTPServer starts the server with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a JSON slog.Logger for the given level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// Package main is the entry point of the events worker Lambda.
//
// The worker consumes the events the API queued on SQS_EVENTS and runs each
// one through the processing core. Lambda SQS integration uses partial batch
// responses: only records whose result is a Failure are reported back, so
// SQS re-delivers exactly those. Skipped, Aborted and NotPossible results
// are acknowledged.
//
// In local mode (APP_ENV=local) the handler reads one SQS event as JSON from
// stdin instead of starting the Lambda runtime:
//
//	echo '{"Records":[{"messageId":"1","body":"{...}"}]}' | go run ./cmd/events-worker
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"omc/internal/config"
	"omc/internal/external"
	"omc/internal/processing"
	"omc/internal/queue"
	"omc/internal/types"
)

// EventProcessor processes one raw event.
type EventProcessor interface {
	Process(ctx context.Context, raw []byte) types.ProcessingResult
}

// Handler holds the dependencies of the Lambda handler.
type Handler struct {
	processor EventProcessor
	logger    types.Logger
}

// Handle processes every record of the batch independently.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	response := events.SQSEventResponse{}

	for _, record := range sqsEvent.Records {
		ctx := ctx
		if id, ok := record.MessageAttributes[queue.AttrRequestID]; ok && id.StringValue != nil {
			ctx = types.WithRequestID(ctx, *id.StringValue)
		}

		result := h.processor.Process(ctx, []byte(record.Body))
		if result.Status.IsRetryable() {
			h.logger.Error("event processing failed, scheduling redelivery",
				"message_id", record.MessageId,
				"code", result.Code,
				"description", result.Description,
			)
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
	}

	return response, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("events worker initializing (cold start)")

	handler, err := newHandler(context.Background(), logger)
	if err != nil {
		logger.Error("failed to initialize events worker", "error", err)
		os.Exit(1)
	}

	if os.Getenv("APP_ENV") == "local" {
		if err := runLocal(context.Background(), handler, os.Stdin, os.Stderr); err != nil {
			logger.Error("local run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	lambda.Start(handler.Handle)
}

func newHandler(ctx context.Context, logger *slog.Logger) (*Handler, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	typedLogger := types.NewSlogLogger(logger)

	registry, err := external.NewClientRegistry(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating client registry: %w", err)
	}

	var metrics processing.Metrics = processing.NopMetrics{}
	if cfg.Observability.EnableMetrics {
		awsCfg, err := queue.LoadAWSConfig(ctx, cfg.Queue)
		if err != nil {
			return nil, err
		}
		metrics = processing.NewCloudWatchMetrics(cloudwatch.NewFromConfig(awsCfg), cfg.Observability.MetricNamespace, typedLogger)
	}

	components, err := processing.NewComponents(cfg, registry, metrics, typedLogger)
	if err != nil {
		return nil, fmt.Errorf("assembling processing core: %w", err)
	}

	logger.Info("events worker initialized",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"metrics", cfg.Observability.EnableMetrics,
	)
	return &Handler{processor: components.Orchestrator, logger: typedLogger}, nil
}

// runLocal reads one SQS event from in, handles it and writes the batch
// response to out when it reports failures.
func runLocal(ctx context.Context, h *Handler, in io.Reader, out io.Writer) error {
	payload, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	if len(payload) == 0 {
		return fmt.Errorf("no input received on stdin")
	}

	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(payload, &sqsEvent); err != nil {
		return fmt.Errorf("parsing stdin as SQS event: %w", err)
	}

	response, err := h.Handle(ctx, sqsEvent)
	if err != nil {
		return err
	}
	if len(response.BatchItemFailures) > 0 {
		raw, _ := json.MarshalIndent(response, "", "  ")
		fmt.Fprintln(out, string(raw))
	}
	h.logger.Info("local run completed",
		"records_processed", len(sqsEvent.Records),
		"failures", len(response.BatchItemFailures),
	)
	return nil
}

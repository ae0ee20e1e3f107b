// Package processing runs one inbound event through resolution, data
// gathering and delivery. An Orchestrator holds no per-event state; every
// call of Process is independent and safe for concurrent use.
package processing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"omc/internal/queries"
	"omc/internal/scenarios"
	"omc/internal/serialization"
	"omc/internal/types"
)

// Orchestrator processes notification events.
type Orchestrator struct {
	resolver      *scenarios.Resolver
	adapters      queries.Adapters
	initiatorRole string
	metrics       Metrics
	logger        types.Logger
	now           func() time.Time
}

// NewOrchestrator creates an Orchestrator. metrics and logger are optional.
func NewOrchestrator(resolver *scenarios.Resolver, adapters queries.Adapters, initiatorRole string, metrics Metrics, logger types.Logger) *Orchestrator {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Orchestrator{
		resolver:      resolver,
		adapters:      adapters,
		initiatorRole: initiatorRole,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// Process decodes raw and processes the event it holds.
func (o *Orchestrator) Process(ctx context.Context, raw []byte) types.ProcessingResult {
	event, err := DecodeEvent(raw)
	if err != nil {
		result := types.ResultFromError(err)
		o.log(o.requestLogger(ctx), result)
		return result
	}
	return o.ProcessEvent(ctx, event)
}

// ProcessEvent processes an already decoded event.
func (o *Orchestrator) ProcessEvent(ctx context.Context, event types.NotificationEvent) types.ProcessingResult {
	started := o.now()
	logger := o.requestLogger(ctx).With(
		"channel", event.Channel,
		"resource", event.Resource,
		"action", event.Action,
		"main_object", event.MainObjectURI,
	)

	kind := scenarios.KindUnsupported
	result := func() types.ProcessingResult {
		strategy, err := o.resolver.Resolve(event)
		if err != nil {
			return types.ResultFromError(err)
		}
		kind = strategy.Kind()
		logger = logger.With("scenario", kind)
		ctx := types.WithLogger(ctx, logger)

		qc := queries.NewQueryContext(event, o.adapters, o.initiatorRole)
		data, err := strategy.TryGetData(ctx, qc)
		if err != nil {
			return types.ResultFromError(err)
		}
		return strategy.ProcessData(ctx, event, data)
	}()

	o.metrics.RecordOutcome(ctx, kind, result.Status)
	o.metrics.RecordLatency(ctx, kind, o.now().Sub(started))
	o.log(logger, result)
	return result
}

func (o *Orchestrator) requestLogger(ctx context.Context) types.Logger {
	id := types.GetRequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	return types.LoggerFromContext(ctx, o.logger).With("request_id", id)
}

// DecodeEvent decodes and validates an inbound event. Subscription checks of
// the event source carry little more than their channel and come back as
// skip_test_event; other failures are validation_invalid_json or
// validation_invalid_event.
func DecodeEvent(raw []byte) (types.NotificationEvent, error) {
	event, err := serialization.Deserialize[types.NotificationEvent](raw)
	if err == nil {
		return event, nil
	}
	if errors.Is(err, serialization.ErrShape) && isTestEvent(raw) {
		return event, types.NewAppError(types.ErrCodeSkipTestEvent, "test notification acknowledged", nil)
	}

	code := types.ErrCodeValidationInvalidEvent
	if errors.Is(err, serialization.ErrMalformed) {
		code = types.ErrCodeValidationInvalidJSON
	}
	return event, types.NewAppError(code, "event could not be decoded", err)
}

func isTestEvent(raw []byte) bool {
	var probe struct {
		Channel types.Channel `json:"kanaal"`
	}
	return json.Unmarshal(raw, &probe) == nil && probe.Channel == types.ChannelTest
}

func (o *Orchestrator) log(logger types.Logger, result types.ProcessingResult) {
	args := []any{"status", result.Status, "description", result.Description}
	if result.Code != "" {
		args = append(args, "code", result.Code)
	}
	switch result.Status {
	case types.StatusFailure:
		logger.Error("notification failed", args...)
	case types.StatusNotPossible:
		logger.Warn("notification not possible", args...)
	default:
		logger.Info("notification processed", args...)
	}
}

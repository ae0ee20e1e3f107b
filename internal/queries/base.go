// Package queries implements the versioned query layer over the ZGW registers.
//
// Every outbound call goes through ProcessGet or ProcessPost, which translate
// transport failures and non-success statuses into typed AppErrors:
//
//   - upstream_* for the data registers (hard, the notification fails)
//   - telemetry_report_failed for the feedback channel (soft, logged only)
//   - serialization_failed when a success body does not decode
//
// Scenarios only ever see these codes, never raw HTTP responses.
package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"omc/internal/external"
	"omc/internal/serialization"
	"omc/internal/types"
)

// Base executes typed calls through a NetworkService.
type Base struct {
	network external.NetworkService
	logger  types.Logger
}

// NewBase creates a Base.
func NewBase(network external.NetworkService, logger types.Logger) *Base {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Base{network: network, logger: logger}
}

// ProcessGet fetches uri and decodes the body into T. fallback describes the
// call in error messages.
func ProcessGet[T any](ctx context.Context, b *Base, client types.ClientType, uri, fallback string) (T, error) {
	var zero T
	resp, err := b.network.Get(ctx, client, uri)
	if err != nil {
		return zero, b.transportError(client, uri, fallback, err)
	}
	return decode[T](b, client, uri, fallback, resp)
}

// ProcessPost serializes body, posts it to uri and decodes the answer into T.
func ProcessPost[T any](ctx context.Context, b *Base, client types.ClientType, uri string, body any, fallback string) (T, error) {
	var zero T
	raw, err := serialization.Serialize(body)
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeSerializationFailed, fallback+": request body could not be encoded", err)
	}

	resp, err := b.network.Post(ctx, client, uri, raw)
	if err != nil {
		return zero, b.transportError(client, uri, fallback, err)
	}
	return decode[T](b, client, uri, fallback, resp)
}

func decode[T any](b *Base, client types.ClientType, uri, fallback string, resp external.Response) (T, error) {
	var zero T
	if !resp.Success() {
		return zero, b.statusError(client, uri, fallback, resp)
	}

	out, err := serialization.Deserialize[T](resp.Body)
	if err != nil {
		return zero, types.NewAppErrorWithDetails(
			types.ErrCodeSerializationFailed,
			fmt.Sprintf("%s: response of %s could not be decoded", fallback, client),
			err,
			map[string]any{"uri": uri},
		)
	}
	return out, nil
}

// transportError classifies the error of a call that produced no response.
// Validation errors of the domain guard keep their code for the registers.
func (b *Base) transportError(client types.ClientType, uri, fallback string, err error) error {
	if client.IsTelemetry() {
		b.logger.Warn("telemetry call failed", "uri", uri, "error", err)
		return types.NewAppErrorWithDetails(types.ErrCodeTelemetryFailed, fallback, err, map[string]any{"uri": uri})
	}

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return types.NewAppErrorWithDetails(
			appErr.Code,
			fmt.Sprintf("%s: %s", fallback, appErr.Message),
			err,
			map[string]any{"uri": uri, "client": string(client)},
		)
	}
	return types.NewAppErrorWithDetails(
		types.ErrCodeUpstreamRequestFailed,
		fallback,
		err,
		map[string]any{"uri": uri, "client": string(client)},
	)
}

func (b *Base) statusError(client types.ClientType, uri, fallback string, resp external.Response) error {
	details := map[string]any{
		"uri":    uri,
		"client": string(client),
		"status": resp.StatusCode,
	}
	message := fmt.Sprintf("%s: %s answered %d", fallback, client, resp.StatusCode)
	if snippet := bodySnippet(resp.Body); snippet != "" {
		message += ": " + snippet
	}

	if client.IsTelemetry() {
		b.logger.Warn("telemetry call rejected", "uri", uri, "status", resp.StatusCode)
		return types.NewAppErrorWithDetails(types.ErrCodeTelemetryFailed, message, nil, details)
	}
	return types.NewAppErrorWithDetails(external.StatusErrorCode(resp.StatusCode), message, nil, details)
}

func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

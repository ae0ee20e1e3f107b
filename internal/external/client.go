// Package external is the boundary between the notification core and the
// systems it talks to: the ZGW registers (OpenZaak, OpenKlant, Objecten,
// ObjectTypen, Besluiten) and the NotifyNL delivery provider. All outbound
// HTTP calls are routed through the BaseClient, which enforces circuit
// breaking, trace propagation and error mapping.
//
// The BaseClient never retries. A failed notification is re-delivered as a
// whole by the event source.
package external

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"omc/internal/types"

	"github.com/sony/gobreaker/v2"
)

// statusError marks responses the circuit breaker must count as failures
// while still handing the response back to the caller.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream returned %d", e.code)
}

// BaseClient wraps an *http.Client and a circuit breaker. One BaseClient is
// created per upstream so an unhealthy register does not trip the others.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
}

// BreakerSettings returns the circuit breaker settings used for upstream
// clients.
func BreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	}
}

// NewBaseClient creates a BaseClient with its own circuit breaker.
func NewBaseClient(httpClient *http.Client, breakerName string, userAgent string) *BaseClient {
	return NewBaseClientWithBreaker(
		httpClient,
		gobreaker.NewCircuitBreaker[*http.Response](BreakerSettings(breakerName)),
		userAgent,
	)
}

// NewBaseClientWithBreaker creates a BaseClient with a caller-provided circuit
// breaker.
func NewBaseClientWithBreaker(
	httpClient *http.Client,
	breaker *gobreaker.CircuitBreaker[*http.Response],
	userAgent string,
) *BaseClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &BaseClient{
		client:    httpClient,
		breaker:   breaker,
		userAgent: userAgent,
	}
}

// Do executes the HTTP request with:
//  1. Trace ID injection (X-B3-TraceId from context)
//  2. User-Agent header injection
//  3. Circuit breaker wrapping (5xx and 429 count as failures)
//  4. Error mapping to types.AppError
//
// Any HTTP response, including 4xx and 5xx, is returned as-is and the caller
// closes its body. An error is only returned when no response was obtained:
// transport failure, timeout, or an open circuit breaker.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if traceID := types.GetRequestID(req.Context()); traceID != "" {
		req.Header.Set("X-B3-TraceId", traceID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			return r, &statusError{code: r.StatusCode}
		}
		return r, nil
	})

	var se *statusError
	if err != nil && errors.As(err, &se) && resp != nil {
		return resp, nil
	}
	if err != nil {
		return nil, c.mapError(req, err)
	}
	return resp, nil
}

// mapError translates transport-level failures into AppErrors.
func (c *BaseClient) mapError(req *http.Request, err error) *types.AppError {
	host := req.URL.Host

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(
			types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("circuit breaker is open for %s", host),
			err,
		)
	}

	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return types.NewAppError(
			types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("request to %s timed out", host),
			err,
		)
	}

	return types.NewAppError(
		types.ErrCodeUpstreamRequestFailed,
		fmt.Sprintf("request to %s failed", host),
		err,
	)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// StatusErrorCode maps a non-success HTTP status onto the upstream error code
// family.
func StatusErrorCode(status int) types.ErrorCode {
	switch {
	case status == http.StatusTooManyRequests:
		return types.ErrCodeUpstreamRateLimited
	case status >= 500:
		return types.ErrCodeUpstreamUnavailable
	default:
		return types.ErrCodeUpstreamRequestFailed
	}
}

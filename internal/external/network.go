package external

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"omc/internal/types"
)

// maxResponseBytes caps upstream response bodies.
const maxResponseBytes = 8 << 20

// Response is the raw result of an outbound call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Success reports whether the upstream answered with a 2xx status.
func (r Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NetworkService executes authenticated calls against the registers. The
// client type selects credentials and the allowed domain. A returned error
// means no response was obtained (transport failure, timeout, domain guard);
// non-success statuses are returned in Response.
type NetworkService interface {
	Get(ctx context.Context, client types.ClientType, uri string) (Response, error)
	Post(ctx context.Context, client types.ClientType, uri string, body []byte) (Response, error)
}

// Target binds a client type to its domain and credentials.
type Target struct {
	Domain     string
	Authorizer Authorizer
}

// HTTPNetworkService implements NetworkService over BaseClients, one per
// client type.
type HTTPNetworkService struct {
	targets map[types.ClientType]Target
	clients map[types.ClientType]*BaseClient
	timeout time.Duration
	logger  *slog.Logger
}

// NewHTTPNetworkService creates an HTTPNetworkService. timeout bounds every
// single call including reading the response body.
func NewHTTPNetworkService(
	httpClient *http.Client,
	targets map[types.ClientType]Target,
	timeout time.Duration,
	logger *slog.Logger,
) *HTTPNetworkService {
	if logger == nil {
		logger = slog.Default()
	}
	clients := make(map[types.ClientType]*BaseClient, len(targets))
	for ct := range targets {
		clients[ct] = NewBaseClient(httpClient, string(ct), "OMC/1.0")
	}
	return &HTTPNetworkService{
		targets: targets,
		clients: clients,
		timeout: timeout,
		logger:  logger,
	}
}

// Get implements NetworkService.
func (s *HTTPNetworkService) Get(ctx context.Context, client types.ClientType, uri string) (Response, error) {
	return s.do(ctx, client, http.MethodGet, uri, nil)
}

// Post implements NetworkService.
func (s *HTTPNetworkService) Post(ctx context.Context, client types.ClientType, uri string, body []byte) (Response, error) {
	return s.do(ctx, client, http.MethodPost, uri, body)
}

func (s *HTTPNetworkService) do(ctx context.Context, client types.ClientType, method, uri string, body []byte) (Response, error) {
	target, ok := s.targets[client]
	if !ok {
		return Response{}, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			fmt.Sprintf("no upstream configured for client type %q", client),
			nil,
		)
	}

	if err := CheckDomain(uri, target.Domain); err != nil {
		return Response{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return Response{}, types.NewAppError(types.ErrCodeValidationInvalidURI, "failed to build upstream request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Crs", "EPSG:4326")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Content-Crs", "EPSG:4326")
	}
	if target.Authorizer != nil {
		if err := target.Authorizer.Authorize(req); err != nil {
			return Response{}, err
		}
	}

	started := time.Now()
	resp, err := s.clients[client].Do(req)
	if err != nil {
		s.logger.WarnContext(ctx, "upstream call failed",
			"client", client,
			"method", method,
			"uri", uri,
			"error", err,
		)
		return Response{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, types.NewAppError(
			types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("failed to read response from %s", req.URL.Host),
			err,
		)
	}

	s.logger.DebugContext(ctx, "upstream call",
		"client", client,
		"method", method,
		"uri", uri,
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return Response{StatusCode: resp.StatusCode, Body: raw}, nil
}

// CheckDomain verifies that uri is an absolute http(s) URI on domain. domain
// may carry a port, in which case it must match too.
func CheckDomain(uri, domain string) error {
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidURI,
			"not an absolute http(s) URI",
			err,
			map[string]any{"uri": uri},
		)
	}

	host := u.Host
	if !strings.Contains(domain, ":") {
		host = u.Hostname()
	}
	if !strings.EqualFold(host, domain) {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationForeignDomain,
			fmt.Sprintf("%s is not on the configured domain %s", u.Host, domain),
			nil,
			map[string]any{"uri": uri},
		)
	}
	return nil
}

var _ NetworkService = (*HTTPNetworkService)(nil)

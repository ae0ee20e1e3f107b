package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"omc/internal/types"
)

// notifyAPIBase is the default NotifyNL API base URL.
const notifyAPIBase = "https://api.notifynl.nl"

// NotifyClientConfig holds the configuration for creating a NotifyClient.
type NotifyClientConfig struct {
	APIKey  types.SecretString
	BaseURL string // Override for testing; defaults to notifyAPIBase
	Logger  *slog.Logger
}

// NotifyClient implements NotifyProvider by making direct HTTP calls to the
// NotifyNL (GOV.UK Notify compatible) v2 API through BaseClient.
type NotifyClient struct {
	base    *BaseClient
	auth    *NotifyKeyAuthorizer
	baseURL string
	logger  *slog.Logger
}

// NewNotifyClient creates a new NotifyClient.
func NewNotifyClient(httpClient *http.Client, cfg NotifyClientConfig) (*NotifyClient, error) {
	return NewNotifyClientWithBase(NewBaseClient(httpClient, "notify", "OMC/1.0"), cfg)
}

// NewNotifyClientWithBase creates a NotifyClient with a pre-configured
// BaseClient.
func NewNotifyClientWithBase(base *BaseClient, cfg NotifyClientConfig) (*NotifyClient, error) {
	auth, err := NewNotifyKeyAuthorizer(cfg.APIKey)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = notifyAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &NotifyClient{
		base:    base,
		auth:    auth,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}, nil
}

// ---------------------------------------------------------------------------
// NotifyProvider Implementation
// ---------------------------------------------------------------------------

// SendEmail posts to /v2/notifications/email. NotifyNL answers 201 Created.
func (c *NotifyClient) SendEmail(ctx context.Context, req EmailRequest) (*NotificationReceipt, error) {
	var receipt NotificationReceipt
	if err := c.post(ctx, "SendEmail", "/v2/notifications/email", req, http.StatusCreated, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// SendSms posts to /v2/notifications/sms. NotifyNL answers 201 Created.
func (c *NotifyClient) SendSms(ctx context.Context, req SmsRequest) (*NotificationReceipt, error) {
	var receipt NotificationReceipt
	if err := c.post(ctx, "SendSms", "/v2/notifications/sms", req, http.StatusCreated, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// PreviewTemplate posts to /v2/template/{id}/preview.
func (c *NotifyClient) PreviewTemplate(ctx context.Context, templateID string, personalisation map[string]any) (*TemplatePreview, error) {
	payload := struct {
		Personalisation map[string]any `json:"personalisation"`
	}{Personalisation: personalisation}

	var preview TemplatePreview
	path := "/v2/template/" + url.PathEscape(templateID) + "/preview"
	if err := c.post(ctx, "PreviewTemplate", path, payload, http.StatusOK, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// ---------------------------------------------------------------------------
// HTTP Helpers
// ---------------------------------------------------------------------------

func (c *NotifyClient) post(ctx context.Context, operation, path string, payload any, expected int, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return types.NewAppError(
			types.ErrCodeSerializationFailed,
			fmt.Sprintf("%s: failed to marshal NotifyNL payload", operation),
			err,
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			fmt.Sprintf("%s: failed to create NotifyNL request", operation),
			err,
		)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.auth.Authorize(req); err != nil {
		return err
	}

	started := time.Now()
	resp, err := c.base.Do(req)
	if err != nil {
		return c.wrapNotifyError(operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		return c.handleErrorResponse(resp, operation)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewAppError(
			types.ErrCodeSerializationFailed,
			fmt.Sprintf("%s: NotifyNL response could not be decoded", operation),
			err,
		)
	}

	c.logger.InfoContext(ctx, "notifynl call succeeded",
		"operation", operation,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

// ---------------------------------------------------------------------------
// Error Handling
// ---------------------------------------------------------------------------

// notifyErrorResponse represents the JSON error body returned by NotifyNL.
type notifyErrorResponse struct {
	StatusCode int                 `json:"status_code"`
	Errors     []notifyErrorDetail `json:"errors"`
}

type notifyErrorDetail struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleErrorResponse reads a NotifyNL error response and maps it to an
// AppError.
func (c *NotifyClient) handleErrorResponse(resp *http.Response, operation string) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if readErr != nil {
		return types.NewAppError(
			types.ErrCodeDeliveryFailed,
			fmt.Sprintf("%s: NotifyNL returned status %d and response body was unreadable", operation, resp.StatusCode),
			readErr,
		)
	}

	var nErr notifyErrorResponse
	errMsg := ""
	if jsonErr := json.Unmarshal(body, &nErr); jsonErr == nil && len(nErr.Errors) > 0 {
		parts := make([]string, 0, len(nErr.Errors))
		for _, e := range nErr.Errors {
			parts = append(parts, e.Error+": "+e.Message)
		}
		errMsg = strings.Join(parts, "; ")
	} else {
		errMsg = string(body)
	}

	return c.mapNotifyError(operation, resp.StatusCode, errMsg)
}

// mapNotifyError translates a NotifyNL HTTP error into an AppError.
//   - 400/403 -> delivery_rejected (bad template, bad recipient, bad key)
//   - 429 / 5xx -> delivery_failed
func (c *NotifyClient) mapNotifyError(operation string, statusCode int, message string) error {
	details := map[string]any{"status": statusCode}
	switch {
	case statusCode == http.StatusBadRequest, statusCode == http.StatusForbidden:
		return types.NewAppErrorWithDetails(
			types.ErrCodeDeliveryRejected,
			fmt.Sprintf("%s: NotifyNL rejected the request: %s", operation, message),
			nil,
			details,
		)
	case statusCode == http.StatusTooManyRequests:
		return types.NewAppErrorWithDetails(
			types.ErrCodeDeliveryFailed,
			fmt.Sprintf("%s: NotifyNL rate limit exceeded", operation),
			nil,
			details,
		)
	default:
		return types.NewAppErrorWithDetails(
			types.ErrCodeDeliveryFailed,
			fmt.Sprintf("%s: NotifyNL error (%d): %s", operation, statusCode, message),
			nil,
			details,
		)
	}
}

// wrapNotifyError wraps a BaseClient transport error with context.
func (c *NotifyClient) wrapNotifyError(operation string, err error) error {
	return types.NewAppError(
		types.ErrCodeDeliveryFailed,
		fmt.Sprintf("%s: NotifyNL request failed: %v", operation, err),
		err,
	)
}

// ---------------------------------------------------------------------------
// Interface Compliance
// ---------------------------------------------------------------------------

var _ NotifyProvider = (*NotifyClient)(nil)

package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
// The prefix of a code decides both the HTTP status and the processing
// outcome, so new codes MUST keep to the existing prefixes.
type ErrorCode string

const (
	// Validation (NotPossible, 400/422)
	ErrCodeValidationInvalidEvent   ErrorCode = "validation_invalid_event"
	ErrCodeValidationMissingField   ErrorCode = "validation_missing_required_field"
	ErrCodeValidationInvalidURI     ErrorCode = "validation_invalid_uri"
	ErrCodeValidationForeignDomain  ErrorCode = "validation_foreign_domain"
	ErrCodeValidationInvalidJSON    ErrorCode = "validation_invalid_json"
	ErrCodeValidationUnknownVersion ErrorCode = "validation_unknown_version"
	ErrCodeValidationReference      ErrorCode = "validation_invalid_reference"

	// Scenario resolution (NotPossible, 422)
	ErrCodeScenarioNotImplemented ErrorCode = "scenario_not_implemented"

	// Business short-circuits (Skipped / Aborted, 200)
	ErrCodeSkipTestEvent          ErrorCode = "skip_test_event"
	ErrCodeSkipNotWhitelisted     ErrorCode = "skip_case_type_not_whitelisted"
	ErrCodeSkipNotExpected        ErrorCode = "skip_notification_not_expected"
	ErrCodeSkipCaseNotClosed      ErrorCode = "skip_case_not_closed"
	ErrCodeSkipTaskNotOpen        ErrorCode = "skip_task_not_open"
	ErrCodeSkipNoDistribution     ErrorCode = "skip_no_distribution_channel"
	ErrCodeAbortMissingEmail      ErrorCode = "abort_missing_email_address"
	ErrCodeAbortMissingPhone      ErrorCode = "abort_missing_telephone_number"
	ErrCodeAbortMissingContact    ErrorCode = "abort_missing_contact_details"
	ErrCodeAbortUnsupportedIdType ErrorCode = "abort_unsupported_identification_type"

	// Upstream data sources (Failure, 502)
	ErrCodeUpstreamUnavailable   ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamRateLimited   ErrorCode = "upstream_rate_limited"
	ErrCodeUpstreamRequestFailed ErrorCode = "upstream_request_failed"
	ErrCodeUpstreamEmptyRoles    ErrorCode = "upstream_empty_case_roles"
	ErrCodeUpstreamMissingRole   ErrorCode = "upstream_missing_initiator_role"
	ErrCodeUpstreamMissingCase   ErrorCode = "upstream_missing_linked_case"
	ErrCodeUpstreamMissingParty  ErrorCode = "upstream_missing_party"
	ErrCodeUpstreamMissingStatus ErrorCode = "upstream_missing_case_status"

	// Serialization (Failure, 502)
	ErrCodeSerializationFailed ErrorCode = "serialization_failed"

	// Delivery provider (Failure, 502)
	ErrCodeDeliveryFailed   ErrorCode = "delivery_failed"
	ErrCodeDeliveryRejected ErrorCode = "delivery_rejected"

	// Telemetry / feedback channel (soft, never fails a notification)
	ErrCodeTelemetryFailed ErrorCode = "telemetry_report_failed"

	// Auth (401)
	ErrCodeAuthTokenMissing ErrorCode = "auth_token_missing"
	ErrCodeAuthTokenInvalid ErrorCode = "auth_token_invalid"
	ErrCodeAuthTokenExpired ErrorCode = "auth_token_expired"

	// Internal (Failure, 500)
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
	ErrCodeInternalQueue      ErrorCode = "internal_queue_error"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Everything that is worth re-delivering maps onto 5xx.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case s == string(ErrCodeValidationInvalidJSON):
		return http.StatusBadRequest // 400
	case strings.HasPrefix(s, "validation_"), strings.HasPrefix(s, "scenario_"):
		return http.StatusUnprocessableEntity // 422
	case strings.HasPrefix(s, "skip_"), strings.HasPrefix(s, "abort_"):
		return http.StatusOK // 200
	case strings.HasPrefix(s, "auth_"):
		return http.StatusUnauthorized // 401
	case strings.HasPrefix(s, "upstream_"),
		strings.HasPrefix(s, "serialization_"),
		strings.HasPrefix(s, "delivery_"),
		strings.HasPrefix(s, "telemetry_"):
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

// Outcome maps an ErrorCode onto the processing taxonomy.
func (c ErrorCode) Outcome() ProcessingStatus {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"), strings.HasPrefix(s, "scenario_"), strings.HasPrefix(s, "auth_"):
		return StatusNotPossible
	case strings.HasPrefix(s, "skip_"):
		return StatusSkipped
	case strings.HasPrefix(s, "abort_"):
		return StatusAborted
	default:
		return StatusFailure
	}
}

// IsSoft reports whether the code belongs to the feedback channel.
func (c ErrorCode) IsSoft() bool {
	return strings.HasPrefix(string(c), "telemetry_")
}

// AppError is the standard application error type.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error with the provided details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError with structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// CodeOf extracts the ErrorCode from an error chain. Errors that are not
// AppErrors are reported as ErrCodeInternalUnexpected.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalUnexpected
}

// OutcomeOf classifies any error onto the processing taxonomy.
func OutcomeOf(err error) ProcessingStatus {
	if err == nil {
		return StatusSuccess
	}
	return CodeOf(err).Outcome()
}

// IsSoft reports whether err is a soft (feedback channel) error.
func IsSoft(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code.IsSoft()
}

package core

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"omc/internal/types"
)

// maxRequestBodySize is the maximum allowed size of a request body (1 MB).
const maxRequestBodySize = 1 << 20

// APIResponse is the envelope of successful responses.
type APIResponse struct {
	Data any `json:"data,omitempty"`
}

// APIErrorResponse is the envelope of error responses.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the structured error returned to clients.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// ResultResponse is the body written for a processed event.
type ResultResponse struct {
	Status      types.ProcessingStatus `json:"status"`
	Description string                 `json:"description"`
	Code        types.ErrorCode        `json:"code,omitempty"`
	RequestID   string                 `json:"request_id,omitempty"`
}

// JSON marshals data and writes it with status. A marshalling failure turns
// into a 500 error envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(APIErrorResponse{
			Error: ErrorDetail{
				Code:      string(types.ErrCodeInternalUnexpected),
				Message:   "failed to marshal response",
				RequestID: types.GetRequestID(r.Context()),
			},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes err as an error envelope. AppErrors keep their code, message
// and details; any other error becomes a 500 without leaking its text.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	requestID := types.GetRequestID(r.Context())

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		JSON(w, r, appErr.HTTPStatus(), APIErrorResponse{
			Error: ErrorDetail{
				Code:      string(appErr.Code),
				Message:   appErr.Message,
				Details:   appErr.Details,
				RequestID: requestID,
			},
		})
		return
	}

	JSON(w, r, http.StatusInternalServerError, APIErrorResponse{
		Error: ErrorDetail{
			Code:      string(types.ErrCodeInternalUnexpected),
			Message:   "an unexpected error occurred",
			RequestID: requestID,
		},
	})
}

// ResultStatus maps a processing result onto an HTTP status. Only Failure
// maps onto 5xx, which is what makes the event source re-deliver.
//
//	Success, Skipped, Aborted -> 200
//	NotPossible               -> code status (400/401/422), 422 by default
//	Failure                   -> code status when 5xx, 500 otherwise
func ResultStatus(result types.ProcessingResult) int {
	switch result.Status {
	case types.StatusNotPossible:
		if status := result.Code.HTTPStatus(); result.Code != "" && status >= 400 && status < 500 {
			return status
		}
		return http.StatusUnprocessableEntity
	case types.StatusFailure:
		if status := result.Code.HTTPStatus(); result.Code != "" && status >= 500 {
			return status
		}
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// Result writes result with the status chosen by ResultStatus.
func Result(w http.ResponseWriter, r *http.Request, result types.ProcessingResult) {
	JSON(w, r, ResultStatus(result), ResultResponse{
		Status:      result.Status,
		Description: result.Description,
		Code:        result.Code,
		RequestID:   types.GetRequestID(r.Context()),
	})
}

// ReadBody reads at most 1 MB of the request body.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body must not exceed 1MB", err)
		}
		return nil, types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body could not be read", err)
	}
	return raw, nil
}

// DecodeJSON reads the request body into dst, enforcing the 1 MB limit,
// DisallowUnknownFields and a single JSON value. Failures are returned as
// validation_invalid_json.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return mapDecodeError(err)
	}
	if dec.More() {
		return types.NewAppError(
			types.ErrCodeValidationInvalidJSON,
			"request body must contain a single JSON object",
			nil,
		)
	}
	return nil
}

func mapDecodeError(err error) *types.AppError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body must not exceed 1MB", err)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON, "malformed JSON in request body", err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidJSON,
			"invalid value for field",
			err,
			map[string]any{
				"field":    typeErr.Field,
				"expected": typeErr.Type.String(),
			},
		)
	}

	if strings.HasPrefix(err.Error(), "json: unknown field") {
		return types.NewAppError(
			types.ErrCodeValidationInvalidJSON,
			"unknown field in request body: "+strings.TrimPrefix(err.Error(), "json: unknown field "),
			err,
		)
	}

	if errors.Is(err, io.EOF) {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body must not be empty", err)
	}

	return types.NewAppError(types.ErrCodeValidationInvalidJSON, "invalid JSON in request body", err)
}

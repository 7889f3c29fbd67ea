// Package http serves the ledger as a JSON API.
//
// This file implements a small fluent builder for JSON responses and the
// mapping from domain errors to HTTP status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	data       any
	headers    map[string]string
}

// errorBody is the envelope of every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Write sends the built response. A nil body with 204 writes no content.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Data(errorBody{Error: message})
}

// Code tags an error response with a stable machine-readable code.
func (b *JSONResponseBuilder) Code(code string) *JSONResponseBuilder {
	if body, ok := b.data.(errorBody); ok {
		body.Code = code
		b.data = body
	}
	return b
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded")
}

// validationErrors are the caller mistakes reported as 400 with a stable code.
var validationErrors = map[error]string{
	core.ErrInvalidAmount:       "invalid_amount",
	core.ErrInvalidFee:          "invalid_fee",
	core.ErrEmptyDescription:    "empty_description",
	core.ErrInvalidDate:         "invalid_date",
	core.ErrMissingWallet:       "missing_wallet",
	core.ErrUnknownWallet:       "unknown_wallet",
	core.ErrSameWallet:          "same_wallet",
	core.ErrInvalidType:         "invalid_type",
	core.ErrEmptyName:           "empty_name",
	core.ErrInvalidWalletType:   "invalid_wallet_type",
	core.ErrInvalidBudgetType:   "invalid_budget_type",
	core.ErrMissingTargetWallet: "missing_target_wallet",
	core.ErrBudgetWalletMissing: "budget_wallet_missing",
	core.ErrBudgetExhausted:     "budget_exhausted",
	core.ErrExceedsBudget:       "exceeds_budget",
}

// ErrorFor maps a service error to its response.
func ErrorFor(err error) *JSONResponseBuilder {
	if errors.Is(err, ledger.ErrNotFound) {
		return NotFoundError(err.Error()).Code("not_found")
	}
	for target, code := range validationErrors {
		if errors.Is(err, target) {
			return BadRequestError(err.Error()).Code(code)
		}
	}
	return InternalServerError("internal error")
}

// writeError renders err and logs it at a level matching the status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorFor(err)
	logger := log.FromContext(r.Context())
	if resp.statusCode >= 500 {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err.Error())
	} else {
		logger.DebugContext(r.Context(), "Request rejected", log.FieldError, err.Error())
	}
	resp.Write(w)
}

// Package http serves the time tracker UI and its JSON API.
//
// This file implements a small builder for JSON responses so every handler
// writes status, headers and body the same way.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"timesheet/internal/core"
	applog "timesheet/internal/log"
	"timesheet/internal/sheets"
)

// JSONResponse provides a fluent API for building JSON responses.
type JSONResponse struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponse {
	return &JSONResponse{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponse) Status(code int) *JSONResponse {
	b.statusCode = code
	return b
}

func (b *JSONResponse) Header(name, value string) *JSONResponse {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponse) Body(v any) *JSONResponse {
	b.body = v
	return b
}

// Write sends the built response to w.
func (b *JSONResponse) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

// errorBody is the wire shape of every API failure.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse creates an error response with an optional details string.
func ErrorResponse(statusCode int, message, details string) *JSONResponse {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message, Details: details})
}

func BadRequestError(message string) *JSONResponse {
	return ErrorResponse(http.StatusBadRequest, message, "")
}

func NotFoundError(message string) *JSONResponse {
	return ErrorResponse(http.StatusNotFound, message, "")
}

// InternalServerError reports an upstream failure along with its cause.
func InternalServerError(message string, err error) *JSONResponse {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return ErrorResponse(http.StatusInternalServerError, message, details)
}

const (
	msgMissingFields = "Missing required fields"
	msgMissingRange  = "Start date and end date are required"
	msgNotFound      = "Time entry not found"
	msgBadBody       = "Invalid request body"
	msgRateLimited   = "Rate limit exceeded. Please try again later."
)

// serviceError maps a service failure to a response. Validation problems
// become 400, a missing entry 404 and everything else a 500 carrying
// failMessage. Only 500s are logged here.
func serviceError(r *http.Request, err error, failMessage, component, operation string) *JSONResponse {
	switch {
	case errors.Is(err, core.ErrMissingField):
		return BadRequestError(msgMissingFields)
	case errors.Is(err, core.ErrMissingRange):
		return BadRequestError(msgMissingRange)
	case core.IsValidation(err):
		return BadRequestError(err.Error())
	case errors.Is(err, sheets.ErrNotFound):
		return NotFoundError(msgNotFound)
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogError(r.Context(), failMessage, err, component, operation, nil)
	return InternalServerError(failMessage, err)
}

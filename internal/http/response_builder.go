// Package http exposes the fintrack JSON API.
//
// This file implements the Builder Pattern for constructing JSON responses.
// It provides a fluent API so every handler writes status, headers and body
// the same way, and maps service errors onto the API error shape.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  []core.FieldError `json:"errors,omitempty"`
}

// MessageBody is returned by endpoints that only report an outcome.
type MessageBody struct {
	Message string `json:"message"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets a {message} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Body(MessageBody{Message: msg})
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	payload, err := json.Marshal(b.body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Failed to encode response"}`))
		return
	}

	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n"))
}

// ErrorResponse creates a {message} error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(ErrorBody{Message: message})
}

// ValidationError creates a 400 response listing every rejected field.
func ValidationError(message string, errs core.ValidationErrors) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusBadRequest).
		Body(ErrorBody{Message: message, Errors: errs})
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// TooManyRequestsError is written by the rate limiter.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// writeServiceError maps err onto the API error shape. Validation problems
// become 400 with invalidMsg; anything else is logged and becomes a generic
// 500 with failMsg so storage details never reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, invalidMsg, failMsg string) {
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		ValidationError(invalidMsg, verrs).Write(w)
		return
	}

	errorType := log.ErrorTypeDatabase
	if errors.Is(err, core.ErrDataIntegrity) {
		errorType = log.ErrorTypeDataIntegrity
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), failMsg,
		log.FieldError, err,
		log.FieldErrorType, errorType,
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
	)
	InternalServerError(failMsg).Write(w)
}

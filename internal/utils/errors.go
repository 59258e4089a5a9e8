// Package utils provides utility functions used throughout the application.
package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("invalid request")
	ErrNotImplemented = errors.New("not implemented")
	ErrRateLimited    = errors.New("rate limit exceeded")
)

// AppError represents an application error with context.
// Message is safe to show to callers; Original is only ever logged.
type AppError struct {
	// Original is the underlying error that caused this error
	Original error
	// Message is a human-readable error message
	Message string
	// Code is the HTTP status code that should be returned
	Code int
}

// Error returns the error message, satisfying the error interface.
func (e *AppError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Original)
	}
	return e.Message
}

// Unwrap returns the underlying error, supporting errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Original
}

// NewAppError creates a new AppError.
func NewAppError(err error, message string, code int) *AppError {
	return &AppError{
		Original: err,
		Message:  message,
		Code:     code,
	}
}

// NotFoundError creates a new 404 Not Found error.
func NotFoundError(message string, err error) *AppError {
	if message == "" {
		message = "Resource not found"
	}
	return NewAppError(err, message, http.StatusNotFound)
}

// BadRequestError creates a new 400 Bad Request error.
func BadRequestError(message string, err error) *AppError {
	if message == "" {
		message = "Invalid request"
	}
	return NewAppError(err, message, http.StatusBadRequest)
}

// NotImplementedError creates a new 501 Not Implemented error.
func NotImplementedError(message string, err error) *AppError {
	if message == "" {
		message = "Not implemented"
	}
	return NewAppError(err, message, http.StatusNotImplemented)
}

// InternalServerError creates a new 500 Internal Server Error.
func InternalServerError(message string, err error) *AppError {
	if message == "" {
		message = "Internal server error"
	}
	return NewAppError(err, message, http.StatusInternalServerError)
}

// RateLimitError creates a new 429 Too Many Requests error.
func RateLimitError(message string, err error) *AppError {
	if message == "" {
		message = "Rate limit exceeded"
	}
	return NewAppError(err, message, http.StatusTooManyRequests)
}

// IsNotFound checks if an error is a "not found" error.
func IsNotFound(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == http.StatusNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsNotImplemented checks if an error is a "not implemented" error.
func IsNotImplemented(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == http.StatusNotImplemented
	}
	return errors.Is(err, ErrNotImplemented)
}

// StatusCode returns the HTTP status code for the error.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the caller-safe message for err. Errors that are not
// AppErrors never leak their text.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	switch StatusCode(err) {
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusBadRequest:
		return "Invalid request"
	case http.StatusNotImplemented:
		return "Not implemented"
	case http.StatusTooManyRequests:
		return "Rate limit exceeded"
	default:
		return "Internal server error"
	}
}

// Package utils provides utility functions used throughout the application.
package utils

import (
	"net/http"

	"github.com/goccy/go-json"
)

// ErrorBody is the JSON shape of every error response: {"detail": "..."}.
type ErrorBody struct {
	Detail string                `json:"detail"`
	Errors []ValidationErrorItem `json:"errors,omitempty"`
}

// ValidationErrorItem represents a single validation error.
type ValidationErrorItem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondWithJSON sends a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		GetLogger().Error("Failed to encode JSON response", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// RespondWithError sends an error response with the given status code and message.
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorBody{Detail: message})
}

// RespondWithAppError maps err to its status code and caller-safe message.
func RespondWithAppError(w http.ResponseWriter, err error) {
	RespondWithError(w, StatusCode(err), PublicMessage(err))
}

// RespondWithValidationError sends a 400 listing every failed field.
func RespondWithValidationError(w http.ResponseWriter, err error) {
	RespondWithJSON(w, http.StatusBadRequest, ErrorBody{
		Detail: "Validation failed",
		Errors: FormatValidationErrors(err),
	})
}

// DecodeJSONBody decodes the request body into dst.
func DecodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return BadRequestError("Request body is required", nil)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return BadRequestError("Invalid request body", err)
	}
	return nil
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/mantavyam/jacob-web/pkg/validation"
)

// ErrorResponse is the envelope of every failed API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"` // machine-readable code
	Message string `json:"message"`
}

// ValidationErrorResponse lists the rejected form fields in form order.
type ValidationErrorResponse struct {
	Success bool                    `json:"success"`
	Errors  []validation.FieldError `json:"errors"`
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// the status line is already out, nothing useful to do on failure
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error:   errorCode,
		Message: message,
	})
}

// WriteValidationErrors answers 400 with the field errors of a rejected form.
func WriteValidationErrors(w http.ResponseWriter, errs *validation.Errors) {
	fields := make([]validation.FieldError, 0)
	if errs != nil {
		fields = append(fields, errs.Fields...)
	}
	WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse{Success: false, Errors: fields})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}

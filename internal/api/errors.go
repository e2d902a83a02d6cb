package api

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error payload.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Common error codes
const (
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeInternalError         = "INTERNAL_ERROR"
	ErrCodeNotReady              = "NOT_READY"
	ErrCodeComparisonUnavailable = "COMPARISON_UNAVAILABLE"
)

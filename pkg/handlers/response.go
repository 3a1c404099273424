// Package handlers contains the HTTP API. Handlers decode requests, call
// services, and map service errors to status codes; they hold no business
// rules of their own.
package handlers

import (
	"encoding/json"
	"net/http"
)

// ApiResponse wraps successful response payloads.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// errorBody is the wire shape of every error response: a machine-readable
// code plus a human-readable message.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return writeBody(w, statusCode, errorBody{Error: errorCode, Message: message})
}

// WriteJSON writes data as JSON with the given status and returns any
// encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	return writeBody(w, statusCode, data)
}

func writeBody(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// Package httputil holds the response helpers shared by preview handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/banshee-data/threephase/internal/monitoring"
	"github.com/banshee-data/threephase/internal/waveform"
)

var logf = monitoring.Component("http")

// WriteJSONError writes a JSON error response with the given status code and message.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		logf("failed to encode json error response: %v", err)
	}
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logf("failed to encode json response: %v", err)
	}
}

// WriteError maps an error to a status code: parameter and state errors
// are the caller's fault (400), anything else is a 500.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logf("request failed: %v", err)
	}
	WriteJSONError(w, status, err.Error())
}

// StatusFor returns the HTTP status used by WriteError for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, waveform.ErrInvalidParameter), errors.Is(err, waveform.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteBody writes a successful response with an explicit content type.
func WriteBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(body); err != nil {
		logf("failed to write response body: %v", err)
	}
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter) {
	WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// BadRequest writes a 400 Bad Request response with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSONError(w, http.StatusBadRequest, msg)
}

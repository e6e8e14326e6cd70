package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/data-ashita/monitor-dash/internal/models"
)

// WriteJSON writes a JSON response with the given status code and data.
// Encoding errors are logged; by then the status line is already sent.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// WriteError writes a structured JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, models.ErrorResponse{Code: code, Message: message})
}

// MethodNotAllowed writes a 405 response advertising the allowed method.
func MethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

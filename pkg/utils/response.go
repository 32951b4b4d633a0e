package utils

import (
	"encoding/json"
	"net/http"
)

// Stable error kinds surfaced to clients alongside the human-readable message.
const (
	KindUnauthenticated   = "unauthenticated"
	KindForbidden         = "forbidden"
	KindNotFound          = "not_found"
	KindInvalidInput      = "invalid_input"
	KindInvalidTransition = "invalid_transition"
	KindUnknownCategory   = "unknown_category"
	KindConflict          = "conflict"
	KindInternal          = "internal"
)

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError sends an error response with a stable kind and a message.
// No internal detail (stack traces, SQL errors) ever goes through here.
func RespondError(w http.ResponseWriter, status int, kind, message string) {
	RespondJSON(w, status, map[string]interface{}{
		"success": false,
		"kind":    kind,
		"error":   message,
	})
}

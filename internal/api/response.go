package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// The storefront client expects flat JSON bodies: {"result": ...} on
// success, {"error": ...} on failure, no envelope.

type errorBody struct {
	Error   string `json:"error"`
	ResetAt string `json:"resetAt,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Error: message})
}

// JSONRateLimited writes the 429 body carrying the quota reset instant.
func JSONRateLimited(w http.ResponseWriter, message string, resetAt time.Time) {
	JSON(w, http.StatusTooManyRequests, errorBody{
		Error:   message,
		ResetAt: resetAt.Format(time.RFC3339),
	})
}

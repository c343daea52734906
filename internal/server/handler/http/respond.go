// Package http exposes the user and blood-pressure services as the JSON
// REST API consumed by the single-page front end.
package http

import (
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// writeJSON encodes v with status 200. A nil pointer encodes as null,
// which is how "not found" reaches the client.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// storageFailure answers 400 with the raw error text.
func storageFailure(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	if log != nil {
		log.Warn("request failed", zap.String("op", op), zap.Error(err))
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

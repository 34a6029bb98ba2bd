package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError sends a JSON error body with a stable machine-readable code.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}

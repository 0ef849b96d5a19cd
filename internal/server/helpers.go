package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"vidgrab/internal/utils/logging"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.E("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg, details string) {
	respondJSON(w, status, errorResponse{Error: msg, Details: details})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

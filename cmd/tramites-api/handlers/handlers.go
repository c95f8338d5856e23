// Package handlers implements the HTTP handlers for the tramites API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, status int, message, detail string) {
	writeJSON(w, logger, status, errorResponse{Error: message, Message: detail})
}

// internalDetail returns the error text only when the server is configured
// to expose internal errors. The full error is always logged by the caller.
func internalDetail(err error, expose bool) string {
	if !expose {
		return ""
	}
	return err.Error()
}

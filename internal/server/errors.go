package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TailoredAgents/joslyn-api/internal/auth"
	"github.com/TailoredAgents/joslyn-api/internal/queue"
	"github.com/TailoredAgents/joslyn-api/internal/telemetry"
	"github.com/rs/zerolog"
)

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the canonical error body: {"error": "<code>"}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// handleError maps domain errors to HTTP responses. Anything unmapped is a
// 500; the cause is logged, never echoed to the client.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")

	case errors.Is(err, auth.ErrForbidden):
		telemetry.GetMetrics().AccessDeniedTotal.Add(r.Context(), 1)
		writeError(w, http.StatusForbidden, "insufficient_role")

	case errors.Is(err, queue.ErrQueueUnavailable):
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to enqueue job")
		writeError(w, http.StatusServiceUnavailable, "queue_unavailable")

	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

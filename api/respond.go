package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/temporal-sa/interactive-research/engine"
)

// httpStatus maps engine errors onto HTTP status codes. Every engine failure
// is surfaced directly; there is no local recovery or retry.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrWorkflowNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidClarification):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrResultNotReady):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrClarificationsClosed),
		errors.Is(err, engine.ErrResearchAlreadyStarted):
		return http.StatusConflict
	case errors.Is(err, engine.ErrStreamingUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, engine.ErrEngineUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorDetail returns the client-facing detail string for an engine error.
// The not-ready message is pinned verbatim: the frontend matches on it.
func errorDetail(err error) string {
	if errors.Is(err, engine.ErrResultNotReady) {
		return "Research not complete yet"
	}
	return err.Error()
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload) //nolint:errcheck // headers already sent
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

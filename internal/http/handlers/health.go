package handlers

import (
	"net/http"
	"time"
)

// Root is the service banner.
func (api *API) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, r, http.StatusNotFound, "not_found", "unknown route")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "AILinter API running",
		"version": "1.0.0",
		"status":  "active",
	})
}

// Health reports store and queue reachability. The result store is
// required; the queue is reported but does not fail the check, matching
// the submit path which surfaces queue errors per request.
func (api *API) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	queueState := "connected"
	if api.queuePing == nil {
		queueState = "unconfigured"
	} else if err := api.queuePing.Ping(r.Context()); err != nil {
		queueState = "disconnected"
	}

	if api.storePing == nil {
		writeError(w, r, http.StatusServiceUnavailable, "unhealthy", "result store not configured")
		return
	}
	if err := api.storePing.Ping(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "unhealthy", "result store unreachable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"store":     "connected",
		"queue":     queueState,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

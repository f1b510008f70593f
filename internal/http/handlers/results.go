package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cigdeemtok/AILinter/internal/service"
)

// Result returns the full analysis record for an id, or 404 once the
// record expired or never existed.
func (api *API) Result(w http.ResponseWriter, r *http.Request) {
	analysisID, ok := api.pathID(w, r, "/result/")
	if !ok {
		return
	}

	result, err := api.reader.Result(r.Context(), analysisID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "not_found", "analysis result not found")
		case errors.Is(err, service.ErrStoreUnavailable):
			writeError(w, r, http.StatusServiceUnavailable, "store_unavailable", "result store unreachable")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to load analysis result")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Status returns only the status string for an id.
func (api *API) Status(w http.ResponseWriter, r *http.Request) {
	analysisID, ok := api.pathID(w, r, "/status/")
	if !ok {
		return
	}

	status, err := api.reader.Status(r.Context(), analysisID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "not_found", "analysis status not found")
		case errors.Is(err, service.ErrStoreUnavailable):
			writeError(w, r, http.StatusServiceUnavailable, "store_unavailable", "result store unreachable")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to load analysis status")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analysisId": analysisID,
		"status":     status,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

func (api *API) pathID(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return "", false
	}

	analysisID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if analysisID == "" || strings.Contains(analysisID, "/") {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "analysis id is required")
		return "", false
	}
	return analysisID, true
}

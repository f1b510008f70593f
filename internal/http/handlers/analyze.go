package handlers

import (
	"errors"
	"net/http"

	"github.com/cigdeemtok/AILinter/internal/domain"
	"github.com/cigdeemtok/AILinter/internal/service"
)

type analyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	FileName string `json:"fileName,omitempty"`
}

type analyzeResponse struct {
	AnalysisID string `json:"analysisId"`
	Message    string `json:"message"`
}

// Analyze accepts a code snippet, queues it for analysis, and returns the
// analysis id immediately. Processing happens asynchronously; clients poll
// the result and status endpoints.
func (api *API) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var request analyzeRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	analysisID, err := api.submitter.Submit(
		r.Context(),
		request.Code,
		domain.Language(request.Language),
		request.FileName,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, service.ErrQueueUnavailable):
			writeError(w, r, http.StatusServiceUnavailable, "queue_unavailable", "analysis could not be queued")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal_error", "analysis could not be queued")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, analyzeResponse{
		AnalysisID: analysisID,
		Message:    "analysis queued",
	})
}

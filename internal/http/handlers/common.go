package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cigdeemtok/AILinter/internal/http/middleware"
	"github.com/cigdeemtok/AILinter/internal/service"
)

var errInvalidPayload = errors.New("invalid payload")

// Pinger reports reachability of an infrastructure dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type API struct {
	submitter *service.Submitter
	reader    *service.Reader
	storePing Pinger
	queuePing Pinger
}

func NewAPI(submitter *service.Submitter, reader *service.Reader, storePing, queuePing Pinger) *API {
	return &API{
		submitter: submitter,
		reader:    reader,
		storePing: storePing,
		queuePing: queuePing,
	}
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	payload := errorPayload{RequestID: middleware.GetRequestID(r.Context())}
	payload.Error.Code = code
	payload.Error.Message = message
	writeJSON(w, statusCode, payload)
}

// decodeJSON tolerates unknown fields so older or newer extension
// versions can submit without breaking.
func decodeJSON(r *http.Request, value any) error {
	if err := json.NewDecoder(r.Body).Decode(value); err != nil {
		return errInvalidPayload
	}
	return nil
}

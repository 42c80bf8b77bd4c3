package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/bookmarks-api/internal/domain"
	"github.com/MrSnakeDoc/bookmarks-api/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
	"github.com/MrSnakeDoc/bookmarks-api/internal/metrics"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store"
)

const (
	msgNotFound    = "Bookmark Not Found"
	msgServerError = "server error"

	maxBodyBytes = 1 << 20
)

type errorMessage struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorMessage `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: errorMessage{Message: msg}})
}

// fail maps err to exactly one response and records the outcome of op.
func fail(w http.ResponseWriter, r *http.Request, d deps.Deps, op string, err error) {
	reqID := middleware.GetReqID(r.Context())

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		metrics.RecordOperation(op, metrics.ResultInvalid)
		d.Logger.Error("invalid bookmark request",
			logger.String("operation", op),
			logger.String("reason", verr.Error()),
			logger.String("request_id", reqID))
		writeError(w, http.StatusBadRequest, verr.Error())

	case errors.Is(err, store.ErrNotFound):
		metrics.RecordOperation(op, metrics.ResultNotFound)
		d.Logger.Warn("bookmark not found",
			logger.String("operation", op),
			logger.String("path", r.URL.Path),
			logger.String("request_id", reqID))
		writeError(w, http.StatusNotFound, msgNotFound)

	default:
		metrics.RecordOperation(op, metrics.ResultError)
		d.Logger.Error("bookmark operation failed",
			logger.String("operation", op),
			logger.String("request_id", reqID),
			logger.Error(err))
		msg := msgServerError
		if !d.Production {
			msg = err.Error()
		}
		writeError(w, http.StatusInternalServerError, msg)
	}
}

// decodeInput reads a JSON object body. An empty body is an empty object.
func decodeInput(w http.ResponseWriter, r *http.Request) (domain.Input, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var in domain.Input
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Input{}, nil
		}
		return nil, domain.MalformedBody()
	}
	if in == nil {
		// literal null
		return domain.Input{}, nil
	}
	return in, nil
}

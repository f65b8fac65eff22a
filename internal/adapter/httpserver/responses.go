// Package httpserver contains HTTP handlers and middleware.
//
// It provides REST API endpoints for document ingestion and interview
// sessions. The package keeps HTTP concerns separate from business logic:
// handlers decode, validate, delegate to usecases and encode.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, details interface{}) {
	code := http.StatusInternalServerError
	codeStr := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
		codeStr = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrEmptyContent):
		code = http.StatusBadRequest
		codeStr = "EMPTY_CONTENT"
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
		codeStr = "NOT_FOUND"
	case errors.Is(err, domain.ErrRateLimited):
		code = http.StatusTooManyRequests
		codeStr = "RATE_LIMITED"
	case errors.Is(err, domain.ErrContentBlocked):
		code = http.StatusUnprocessableEntity
		codeStr = "CONTENT_BLOCKED"
	case errors.Is(err, domain.ErrResponseTruncated):
		code = http.StatusBadGateway
		codeStr = "RESPONSE_TRUNCATED"
	case errors.Is(err, domain.ErrEmptyResponse):
		code = http.StatusBadGateway
		codeStr = "EMPTY_RESPONSE"
	case errors.Is(err, domain.ErrEmbeddingService):
		code = http.StatusServiceUnavailable
		codeStr = "EMBEDDING_UNAVAILABLE"
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		code = http.StatusServiceUnavailable
		codeStr = "UPSTREAM_RATE_LIMIT"
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{
		Code:      codeStr,
		Message:   err.Error(),
		RequestID: observability.RequestIDFromContext(r.Context()),
		Details:   details,
	}})
}

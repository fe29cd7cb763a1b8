package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/icebreaker/internal/auth"
	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/logger"
	"github.com/MrSnakeDoc/icebreaker/internal/recommend"
)

// maxBodyBytes bounds mutation and card payloads.
const maxBodyBytes = 1 << 20

var errUnsupportedMediaType = errors.New("content type must be application/json")

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the domain error taxonomy to HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, recommend.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError replies with {"error": ...}. Server-side failures are logged and their
// details are not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()

	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
		switch {
		case status == http.StatusServiceUnavailable:
			msg = recommend.ErrDisabled.Error()
		case errors.Is(err, domain.ErrStoreUnavailable):
			msg = domain.ErrStoreUnavailable.Error()
		default:
			msg = http.StatusText(status)
		}
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a bounded JSON body into v. Bodies not sent as application/json
// are refused before reading, so simple cross-origin form posts never reach the store.
// Malformed bodies are invalid input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		return errUnsupportedMediaType
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", domain.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// userID returns the caller's id, or "" which the service rejects as unauthorized.
func userID(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.UserID
}

package internal

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/jobq/pkg/job"
)

// HTTPError is an API error with the status code it renders as.
type HTTPError struct {
	// Err is the underlying error, logged but not exposed.
	Err error

	// Message is the client-facing message.
	Message string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func newHTTPError(code int, message string, err error) *HTTPError {
	return &HTTPError{Code: code, Message: message, Err: err}
}

// ErrBadRequest reports a malformed request.
func ErrBadRequest(message string, err error) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message, err)
}

// ErrNotFound reports a missing resource.
func ErrNotFound(message string, err error) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, err)
}

// ErrInternal reports a server-side failure.
func ErrInternal(err error) *HTTPError {
	return newHTTPError(http.StatusInternalServerError, "internal server error", err)
}

// errorResponse is the JSON body of every error response.
type errorResponse struct {
	Error string `json:"error"`
}

// toHTTPError maps queue errors to API errors.
func toHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, job.ErrJobNotFound):
		return ErrNotFound("job not found", err)
	case errors.Is(err, job.ErrEmptyType):
		return ErrBadRequest("job type is required", err)
	default:
		return ErrInternal(err)
	}
}

// writeError renders err as JSON. Server errors are logged with their cause.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	httpErr := toHTTPError(err)
	if httpErr.Code >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	writeJSON(w, httpErr.Code, errorResponse{Error: httpErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

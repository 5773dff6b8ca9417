package api

import (
	"errors"
	"net/http"
)

// AppError is the typed outcome every failure path resolves to before it
// reaches the HTTP layer.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Message: "bad request"}
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "not found"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "internal server error"}
)

// NewValidationError reports malformed or incomplete client input.
// Surfaced verbatim with HTTP 400, never retried.
func NewValidationError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

// NewUpstreamError reports a failure from the catalog, chat, or
// image-generation collaborator. Surfaced with HTTP 500; the raw upstream
// payload is logged by the caller, not returned.
func NewUpstreamError(msg string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: msg}
}

func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		JSONError(w, appErr.Code, appErr.Message)
		return
	}
	JSONError(w, http.StatusInternalServerError, "internal server error")
}

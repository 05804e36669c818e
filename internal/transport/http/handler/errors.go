package handler

import (
	"errors"
	"net/http"

	"github.com/klikk/verify-api/internal/domain"
)

// httpError maps domain sentinel errors to HTTP status codes. Unknown errors
// never leak internals to the client.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDispatchFailed):
		writeError(w, http.StatusInternalServerError, "failed to send verification SMS")
	case errors.Is(err, domain.ErrBadRequest),
		errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrExhausted),
		errors.Is(err, domain.ErrCodeMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

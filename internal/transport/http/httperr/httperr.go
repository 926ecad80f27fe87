package httperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clouddelivery/backend/internal/errs"
)

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// WriteError translates a service error into the HTTP error taxonomy.
// Unexpected errors are logged and reduced to a generic message so
// internals never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, errs.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, errs.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, errs.ErrConflict):
		status, msg = http.StatusConflict, "already exists"
	default:
		slog.Error("Internal error", "error", err)
	}

	WriteJSON(w, status, map[string]string{"error": msg})
}

package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/shelf"
)

// HandleError writes the response for a failed stat or open. Every storage
// failure is reported to the client as "file not found".
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shelf.ErrNotFound), errors.Is(err, shelf.ErrPermission):
		slog.DebugContext(r.Context(), "file not found", "path", r.URL.Path, "err", err)
		WriteError(w, r, http.StatusNotFound, msgFileNotFound)
	case errors.Is(err, shelf.ErrInvalidInput):
		slog.DebugContext(r.Context(), "invalid request", "path", r.URL.Path, "err", err)
		WriteError(w, r, http.StatusBadRequest, "invalid path")
	case errors.Is(err, context.Canceled):
		slog.DebugContext(r.Context(), "request cancelled", "path", r.URL.Path)
	default:
		slog.ErrorContext(r.Context(), "request error", "path", r.URL.Path, "err", err)
		WriteError(w, r, http.StatusNotFound, msgFileNotFound)
	}
}

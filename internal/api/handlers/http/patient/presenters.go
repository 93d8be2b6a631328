package patient

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"lifeline/pkg/e"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, e.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, e.ErrInvalidInput), errors.Is(err, e.ErrInvalidCoordinates):
		status = http.StatusBadRequest
	case errors.Is(err, e.ErrConflict), errors.Is(err, e.ErrInvalidTransition):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		h.log(r).Error("request failed", slog.Any("error", err))
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}

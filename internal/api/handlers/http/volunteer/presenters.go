package volunteer

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
	case errors.Is(err, e.ErrOfferQueueEmpty):
		// Long poll expired with nothing to show.
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, e.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, e.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, e.ErrStaleResponse),
		errors.Is(err, e.ErrConflict),
		errors.Is(err, e.ErrInvalidTransition),
		errors.Is(err, e.ErrVolunteerOffline):
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

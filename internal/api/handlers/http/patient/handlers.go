package patient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"lifeline/internal/domain"
	"lifeline/pkg/validator"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type PatientAlerts interface {
	SubmitAlert(ctx context.Context, req domain.SubmitAlertRequest) (domain.SubmitAlertResponse, error)
	IncidentStatus(ctx context.Context, incidentID uuid.UUID) (domain.IncidentStatusResponse, error)
	CancelAlert(ctx context.Context, incidentID uuid.UUID) error
}

type Handler struct {
	logger *slog.Logger
	Alerts PatientAlerts
}

func NewHandler(logger *slog.Logger, alerts PatientAlerts) *Handler {
	return &Handler{
		logger: logger,
		Alerts: alerts,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) SubmitAlert(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	var req domain.SubmitAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		l.Warn("validation failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	l.Info("alert received",
		slog.Float64("lat", req.Lat),
		slog.Float64("lng", req.Lng),
		slog.Float64("accuracy_m", req.AccuracyM),
	)

	resp, err := h.Alerts.SubmitAlert(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) IncidentStatus(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		l.Warn("invalid id", slog.String("id", idStr))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	status, err := h.Alerts.IncidentStatus(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) CancelAlert(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		l.Warn("invalid id", slog.String("id", idStr))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.Alerts.CancelAlert(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

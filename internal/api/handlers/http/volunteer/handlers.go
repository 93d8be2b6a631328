package volunteer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"lifeline/internal/domain"
	"lifeline/pkg/validator"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type VolunteerOps interface {
	SetStatus(ctx context.Context, volunteerID uuid.UUID, req domain.SetStatusRequest) error
	UpdatePosition(ctx context.Context, volunteerID uuid.UUID, req domain.PositionPingRequest) error
	RespondToOffer(ctx context.Context, volunteerID uuid.UUID, req domain.RespondRequest) error
	NextOffer(ctx context.Context, volunteerID uuid.UUID, wait time.Duration) (*domain.OfferSummary, error)
	CurrentAssignment(ctx context.Context, volunteerID uuid.UUID) (*domain.AssignmentView, error)
	ResolveIncident(ctx context.Context, volunteerID, incidentID uuid.UUID) error
	Withdraw(ctx context.Context, volunteerID, incidentID uuid.UUID) error
}

// defaultOfferWait bounds the long-poll on /offers/next; it must stay below
// the server write timeout.
const (
	defaultOfferWait = 20 * time.Second
	maxOfferWait     = 25 * time.Second
)

type Handler struct {
	logger     *slog.Logger
	Volunteers VolunteerOps
}

func NewHandler(logger *slog.Logger, volunteers VolunteerOps) *Handler {
	return &Handler{
		logger:     logger,
		Volunteers: volunteers,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) volunteerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.log(r).Warn("invalid volunteer id", slog.String("id", idStr))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid volunteer id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	volID, ok := h.volunteerID(w, r)
	if !ok {
		return
	}

	var req domain.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Position != nil {
		if err := validator.ValidateStruct(req.Position); err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	if err := h.Volunteers.SetStatus(r.Context(), volID, req); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	volID, ok := h.volunteerID(w, r)
	if !ok {
		return
	}

	var req domain.PositionPingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.Volunteers.UpdatePosition(r.Context(), volID, req); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RespondToOffer(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	volID, ok := h.volunteerID(w, r)
	if !ok {
		return
	}

	var req domain.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	l.Info("offer response",
		slog.String("volunteer_id", volID.String()),
		slog.String("incident_id", req.IncidentID),
		slog.String("response", string(req.Response)),
	)

	if err := h.Volunteers.RespondToOffer(r.Context(), volID, req); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// NextOffer long-polls the volunteer's offer queue; 204 means no live offer
// arrived within the wait window.
func (h *Handler) NextOffer(w http.ResponseWriter, r *http.Request) {
	volID, ok := h.volunteerID(w, r)
	if !ok {
		return
	}

	wait := defaultOfferWait
	if s := r.URL.Query().Get("wait"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			wait = d
		}
	}
	if wait > maxOfferWait {
		wait = maxOfferWait
	}

	summary, err := h.Volunteers.NextOffer(r.Context(), volID, wait)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) CurrentAssignment(w http.ResponseWriter, r *http.Request) {
	volID, ok := h.volunteerID(w, r)
	if !ok {
		return
	}

	view, err := h.Volunteers.CurrentAssignment(r.Context(), volID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ResolveIncident(w http.ResponseWriter, r *http.Request) {
	volID, ok := h.volunteerID(w, r)
	if !ok {
		return
	}

	var req domain.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	incID, err := uuid.Parse(req.IncidentID)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid incident id"})
		return
	}

	if err := h.Volunteers.ResolveIncident(r.Context(), volID, incID); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	volID, ok := h.volunteerID(w, r)
	if !ok {
		return
	}

	var req domain.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	incID, err := uuid.Parse(req.IncidentID)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid incident id"})
		return
	}

	if err := h.Volunteers.Withdraw(r.Context(), volID, incID); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

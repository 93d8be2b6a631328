package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/metrics"
	"lifeline/pkg/e"

	"github.com/google/uuid"
)

type volunteerService struct {
	incidents  IncidentRepository
	registry   VolunteerRepository
	dispatcher Dispatcher
	offers     OfferQueue
	cache      StatusCache
	sink       metrics.Sink
	logger     *slog.Logger
}

func NewVolunteerService(
	incidents IncidentRepository,
	registry VolunteerRepository,
	dispatcher Dispatcher,
	offers OfferQueue,
	cache StatusCache,
	sink metrics.Sink,
	logger *slog.Logger,
) VolunteerService {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &volunteerService{
		incidents:  incidents,
		registry:   registry,
		dispatcher: dispatcher,
		offers:     offers,
		cache:      cache,
		sink:       sink,
		logger:     logger,
	}
}

// SetStatus toggles volunteer presence. Going online requires a position fix;
// going offline while committed to an incident is rejected, withdrawal is the
// path out of an assignment.
func (s *volunteerService) SetStatus(ctx context.Context, volunteerID uuid.UUID, req domain.SetStatusRequest) error {
	const op = "service.Volunteer.SetStatus"

	if req.Online {
		if req.Position == nil {
			return fmt.Errorf("%s: position required to go online: %w", op, e.ErrInvalidInput)
		}
		pos := *req.Position
		pos.UpdatedAt = time.Now().UTC()

		if err := s.registry.SetOnline(ctx, volunteerID, pos); err != nil {
			return e.Wrap(op, err)
		}
		s.logger.Info("volunteer online", slog.String("volunteer_id", volunteerID.String()))
		return nil
	}

	v, err := s.registry.Get(ctx, volunteerID)
	if err != nil {
		return e.Wrap(op, err)
	}
	if v.Status == domain.VolunteerOnlineBusy {
		return fmt.Errorf("%s: active assignment in progress: %w", op, e.ErrConflict)
	}

	if err := s.registry.SetOffline(ctx, volunteerID); err != nil {
		return e.Wrap(op, err)
	}
	s.logger.Info("volunteer offline", slog.String("volunteer_id", volunteerID.String()))
	return nil
}

func (s *volunteerService) UpdatePosition(ctx context.Context, volunteerID uuid.UUID, req domain.PositionPingRequest) error {
	const op = "service.Volunteer.UpdatePosition"

	pos := domain.Position{Lat: req.Lat, Lng: req.Lng, UpdatedAt: time.Now().UTC()}

	if err := s.registry.UpdatePosition(ctx, volunteerID, pos); err != nil {
		return e.Wrap(op, err)
	}
	return nil
}

// RespondToOffer routes an accept or decline to the coordinator. A response
// that no longer matches an open offer surfaces as ErrStaleResponse.
func (s *volunteerService) RespondToOffer(ctx context.Context, volunteerID uuid.UUID, req domain.RespondRequest) error {
	const op = "service.Volunteer.RespondToOffer"

	incidentID, err := uuid.Parse(req.IncidentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	return s.dispatcher.HandleResponse(ctx, incidentID, volunteerID, req.Response)
}

// NextOffer long-polls the volunteer's offer queue.
func (s *volunteerService) NextOffer(ctx context.Context, volunteerID uuid.UUID, wait time.Duration) (*domain.OfferSummary, error) {
	const op = "service.Volunteer.NextOffer"

	summary, err := s.offers.PullNext(ctx, volunteerID, wait)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return summary, nil
}

// CurrentAssignment reveals the patient's identity and exact location to
// exactly one volunteer: the committed assignee of a still-assigned incident.
// Everyone else gets not-found.
func (s *volunteerService) CurrentAssignment(ctx context.Context, volunteerID uuid.UUID) (*domain.AssignmentView, error) {
	const op = "service.Volunteer.CurrentAssignment"

	v, err := s.registry.Get(ctx, volunteerID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if v.ActiveIncidentID == nil {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	inc, err := s.incidents.Get(ctx, *v.ActiveIncidentID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if inc.State != domain.IncidentAssigned || inc.AssignedVolunteerID == nil || *inc.AssignedVolunteerID != volunteerID {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	assignedAt := inc.CreatedAt
	if inc.AssignedAt != nil {
		assignedAt = *inc.AssignedAt
	}

	return &domain.AssignmentView{
		IncidentID: inc.ID,
		PatientID:  inc.PatientID,
		Location:   inc.Location,
		AssignedAt: assignedAt,
	}, nil
}

func (s *volunteerService) ResolveIncident(ctx context.Context, volunteerID, incidentID uuid.UUID) error {
	const op = "service.Volunteer.ResolveIncident"

	inc, err := s.incidents.Get(ctx, incidentID)
	if err != nil {
		return e.Wrap(op, err)
	}
	if inc.AssignedVolunteerID == nil || *inc.AssignedVolunteerID != volunteerID {
		return fmt.Errorf("%s: not the assignee: %w", op, e.ErrConflict)
	}

	if err := s.incidents.Resolve(ctx, incidentID); err != nil {
		return e.Wrap(op, err)
	}
	if err := s.registry.Release(ctx, volunteerID); err != nil {
		s.logger.Error("release after resolve failed", slog.Any("error", err))
	}
	if err := s.cache.Invalidate(ctx, incidentID); err != nil {
		s.logger.Warn("status cache invalidate failed", slog.Any("error", err))
	}

	s.sink.IncidentFinished(string(domain.IncidentResolved))
	s.logger.Info("incident resolved",
		slog.String("incident_id", incidentID.String()),
		slog.String("volunteer_id", volunteerID.String()),
	)
	return nil
}

// Withdraw lets a committed volunteer back out. The incident reopens and
// dispatch resumes from the top of the candidate ranking.
func (s *volunteerService) Withdraw(ctx context.Context, volunteerID, incidentID uuid.UUID) error {
	const op = "service.Volunteer.Withdraw"

	reopened, err := s.incidents.Reopen(ctx, incidentID, volunteerID)
	if err != nil {
		return e.Wrap(op, err)
	}
	if !reopened {
		return fmt.Errorf("%s: not the assignee: %w", op, e.ErrConflict)
	}

	if err := s.registry.Release(ctx, volunteerID); err != nil {
		s.logger.Error("release after withdraw failed", slog.Any("error", err))
	}
	if err := s.cache.Invalidate(ctx, incidentID); err != nil {
		s.logger.Warn("status cache invalidate failed", slog.Any("error", err))
	}

	inc, err := s.incidents.Get(ctx, incidentID)
	if err != nil {
		return e.Wrap(op, err)
	}
	s.dispatcher.Launch(inc)

	s.logger.Info("volunteer withdrew, dispatch resumed",
		slog.String("incident_id", incidentID.String()),
		slog.String("volunteer_id", volunteerID.String()),
	)
	return nil
}

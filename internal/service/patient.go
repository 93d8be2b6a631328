package service

import (
	"context"
	"fmt"
	"log/slog"

	"lifeline/internal/domain"
	"lifeline/internal/metrics"
	"lifeline/pkg/e"

	"github.com/google/uuid"
)

type patientService struct {
	incidents  IncidentRepository
	registry   VolunteerRepository
	dispatcher Dispatcher
	cache      StatusCache
	sink       metrics.Sink
	logger     *slog.Logger
}

func NewPatientService(
	incidents IncidentRepository,
	registry VolunteerRepository,
	dispatcher Dispatcher,
	cache StatusCache,
	sink metrics.Sink,
	logger *slog.Logger,
) PatientService {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &patientService{
		incidents:  incidents,
		registry:   registry,
		dispatcher: dispatcher,
		cache:      cache,
		sink:       sink,
		logger:     logger,
	}
}

// SubmitAlert persists the incident and hands it to the dispatch coordinator.
// The response returns immediately; assignment happens asynchronously.
func (s *patientService) SubmitAlert(ctx context.Context, req domain.SubmitAlertRequest) (domain.SubmitAlertResponse, error) {
	const op = "service.Patient.SubmitAlert"

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return domain.SubmitAlertResponse{}, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	inc, err := s.incidents.Create(ctx, patientID, domain.Location{
		Lat:       req.Lat,
		Lng:       req.Lng,
		AccuracyM: req.AccuracyM,
	})
	if err != nil {
		return domain.SubmitAlertResponse{}, e.Wrap(op, err)
	}

	s.sink.IncidentSubmitted()
	s.dispatcher.Launch(inc)

	s.logger.Info("alert submitted",
		slog.String("incident_id", inc.ID.String()),
		slog.String("patient_id", patientID.String()),
	)

	return domain.SubmitAlertResponse{IncidentID: inc.ID}, nil
}

func (s *patientService) IncidentStatus(ctx context.Context, incidentID uuid.UUID) (domain.IncidentStatusResponse, error) {
	const op = "service.Patient.IncidentStatus"

	if cached, err := s.cache.Get(ctx, incidentID); err != nil {
		s.logger.Warn("status cache get failed", slog.Any("error", err))
	} else if cached != nil {
		return *cached, nil
	}

	inc, err := s.incidents.Get(ctx, incidentID)
	if err != nil {
		return domain.IncidentStatusResponse{}, e.Wrap(op, err)
	}

	status := domain.IncidentStatusResponse{
		IncidentID:          inc.ID,
		State:               inc.State,
		AssignedVolunteerID: inc.AssignedVolunteerID,
	}

	if err := s.cache.Set(ctx, status); err != nil {
		s.logger.Warn("status cache set failed", slog.Any("error", err))
	}
	return status, nil
}

// CancelAlert is the patient pressing "I'm okay". The store transition is the
// authority; the coordinator abort and reservation release follow from what
// the store reports.
func (s *patientService) CancelAlert(ctx context.Context, incidentID uuid.UUID) error {
	const op = "service.Patient.CancelAlert"

	prevAssignee, err := s.incidents.Cancel(ctx, incidentID)
	if err != nil {
		return e.Wrap(op, err)
	}

	s.dispatcher.Abort(incidentID)

	if prevAssignee != nil {
		if err := s.registry.Release(ctx, *prevAssignee); err != nil {
			s.logger.Error("release after cancel failed",
				slog.String("volunteer_id", prevAssignee.String()),
				slog.Any("error", err),
			)
		}
	}

	if err := s.cache.Invalidate(ctx, incidentID); err != nil {
		s.logger.Warn("status cache invalidate failed", slog.Any("error", err))
	}

	s.sink.IncidentFinished(string(domain.IncidentCancelled))
	s.logger.Info("alert cancelled", slog.String("incident_id", incidentID.String()))
	return nil
}

package service

import (
	"context"
	"time"

	"lifeline/internal/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

// PatientService covers the patient-facing operations: raising an alert,
// polling its status and cancelling it.
type PatientService interface {
	SubmitAlert(ctx context.Context, req domain.SubmitAlertRequest) (domain.SubmitAlertResponse, error)
	IncidentStatus(ctx context.Context, incidentID uuid.UUID) (domain.IncidentStatusResponse, error)
	CancelAlert(ctx context.Context, incidentID uuid.UUID) error
}

// VolunteerService covers the volunteer-facing operations: presence,
// position pings, offer responses and assignment lifecycle.
type VolunteerService interface {
	SetStatus(ctx context.Context, volunteerID uuid.UUID, req domain.SetStatusRequest) error
	UpdatePosition(ctx context.Context, volunteerID uuid.UUID, req domain.PositionPingRequest) error
	RespondToOffer(ctx context.Context, volunteerID uuid.UUID, req domain.RespondRequest) error
	NextOffer(ctx context.Context, volunteerID uuid.UUID, wait time.Duration) (*domain.OfferSummary, error)
	CurrentAssignment(ctx context.Context, volunteerID uuid.UUID) (*domain.AssignmentView, error)
	ResolveIncident(ctx context.Context, volunteerID, incidentID uuid.UUID) error
	Withdraw(ctx context.Context, volunteerID, incidentID uuid.UUID) error
}

type IncidentRepository interface {
	Create(ctx context.Context, patientID uuid.UUID, loc domain.Location) (*domain.Incident, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	Cancel(ctx context.Context, id uuid.UUID) (*uuid.UUID, error)
	Resolve(ctx context.Context, id uuid.UUID) error
	Reopen(ctx context.Context, id, volunteerID uuid.UUID) (bool, error)
}

type VolunteerRepository interface {
	SetOnline(ctx context.Context, id uuid.UUID, pos domain.Position) error
	SetOffline(ctx context.Context, id uuid.UUID) error
	UpdatePosition(ctx context.Context, id uuid.UUID, pos domain.Position) error
	Release(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Volunteer, error)
}

// Dispatcher is the running assignment coordinator.
type Dispatcher interface {
	Launch(inc *domain.Incident)
	Abort(incidentID uuid.UUID)
	HandleResponse(ctx context.Context, incidentID, volunteerID uuid.UUID, resp domain.OfferResponse) error
}

// OfferQueue is the device-facing side of offer delivery.
type OfferQueue interface {
	PullNext(ctx context.Context, volunteerID uuid.UUID, timeout time.Duration) (*domain.OfferSummary, error)
}

// StatusCache shields the incident store from patient status polling.
type StatusCache interface {
	Get(ctx context.Context, incidentID uuid.UUID) (*domain.IncidentStatusResponse, error)
	Set(ctx context.Context, status domain.IncidentStatusResponse) error
	Invalidate(ctx context.Context, incidentID uuid.UUID) error
}

type Service struct {
	PatientService   PatientService
	VolunteerService VolunteerService
}

func NewService(patient PatientService, volunteer VolunteerService) *Service {
	return &Service{
		PatientService:   patient,
		VolunteerService: volunteer,
	}
}

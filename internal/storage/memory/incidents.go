package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lifeline/internal/domain"
	"lifeline/pkg/e"

	"github.com/google/uuid"
)

// IncidentStore keeps incident records and their lifecycle in memory. Every
// guarded transition is a single check-and-set under the lock; callers never
// read-modify-write across calls.
type IncidentStore struct {
	mu        sync.Mutex
	incidents map[uuid.UUID]*domain.Incident
}

func NewIncidentStore() *IncidentStore {
	return &IncidentStore{incidents: make(map[uuid.UUID]*domain.Incident)}
}

func (s *IncidentStore) Create(ctx context.Context, patientID uuid.UUID, loc domain.Location) (*domain.Incident, error) {
	inc := &domain.Incident{
		ID:        uuid.New(),
		PatientID: patientID,
		Location:  loc,
		State:     domain.IncidentCreated,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.incidents[inc.ID] = inc
	s.mu.Unlock()

	cp := *inc
	return &cp, nil
}

func (s *IncidentStore) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	const op = "memory.Incident.Get"

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return snapshot(inc), nil
}

func (s *IncidentStore) BeginDispatch(ctx context.Context, id uuid.UUID) error {
	const op = "memory.Incident.BeginDispatch"

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	if inc.State != domain.IncidentCreated {
		return fmt.Errorf("%s: %s: %w", op, inc.State, e.ErrInvalidTransition)
	}
	inc.State = domain.IncidentDispatching
	return nil
}

func (s *IncidentStore) RecordOffer(ctx context.Context, id, volunteerID uuid.UUID, offeredAt, deadline time.Time, round int) error {
	const op = "memory.Incident.RecordOffer"

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	if inc.OfferedInRound(volunteerID, round) {
		return fmt.Errorf("%s: duplicate offer in round %d: %w", op, round, e.ErrConflict)
	}
	inc.OfferHistory = append(inc.OfferHistory, domain.OfferRecord{
		VolunteerID: volunteerID,
		OfferedAt:   offeredAt,
		Deadline:    deadline,
		Round:       round,
	})
	return nil
}

func (s *IncidentStore) RecordOutcome(ctx context.Context, id, volunteerID uuid.UUID, outcome domain.OfferOutcome) error {
	const op = "memory.Incident.RecordOutcome"

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	for i := len(inc.OfferHistory) - 1; i >= 0; i-- {
		rec := &inc.OfferHistory[i]
		if rec.VolunteerID == volunteerID && rec.Outcome == nil {
			o := outcome
			rec.Outcome = &o
			return nil
		}
	}
	return fmt.Errorf("%s: no open offer for volunteer: %w", op, e.ErrNotFound)
}

// CommitAssignment is the incident-side half of the double-booking guard. It
// succeeds only from DISPATCHING with no assignee yet; false means another
// commit already won.
func (s *IncidentStore) CommitAssignment(ctx context.Context, id, volunteerID uuid.UUID) (bool, error) {
	const op = "memory.Incident.CommitAssignment"

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return false, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	if inc.State != domain.IncidentDispatching || inc.AssignedVolunteerID != nil {
		return false, nil
	}
	volID := volunteerID
	now := time.Now().UTC()
	inc.State = domain.IncidentAssigned
	inc.AssignedVolunteerID = &volID
	inc.AssignedAt = &now
	return true, nil
}

func (s *IncidentStore) Resolve(ctx context.Context, id uuid.UUID) error {
	const op = "memory.Incident.Resolve"

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	if inc.State != domain.IncidentAssigned {
		return fmt.Errorf("%s: %s: %w", op, inc.State, e.ErrInvalidTransition)
	}
	inc.State = domain.IncidentResolved
	return nil
}

// Cancel moves any non-terminal incident to CANCELLED and returns the
// volunteer that was assigned at that moment, if any, so the caller can
// release the reservation.
func (s *IncidentStore) Cancel(ctx context.Context, id uuid.UUID) (*uuid.UUID, error) {
	const op = "memory.Incident.Cancel"

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	if inc.State.Terminal() {
		return nil, fmt.Errorf("%s: %s: %w", op, inc.State, e.ErrInvalidTransition)
	}
	prev := inc.AssignedVolunteerID
	inc.State = domain.IncidentCancelled
	inc.AssignedVolunteerID = nil
	inc.AssignedAt = nil
	return prev, nil
}

func (s *IncidentStore) MarkUnassignable(ctx context.Context, id uuid.UUID) error {
	const op = "memory.Incident.MarkUnassignable"

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	if inc.State != domain.IncidentDispatching {
		return fmt.Errorf("%s: %s: %w", op, inc.State, e.ErrInvalidTransition)
	}
	inc.State = domain.IncidentUnassignable
	return nil
}

// Reopen reverts ASSIGNED → DISPATCHING when the committed volunteer
// withdraws. Conditional on the caller still being the assignee.
func (s *IncidentStore) Reopen(ctx context.Context, id, volunteerID uuid.UUID) (bool, error) {
	const op = "memory.Incident.Reopen"

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return false, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	if inc.State != domain.IncidentAssigned || inc.AssignedVolunteerID == nil || *inc.AssignedVolunteerID != volunteerID {
		return false, nil
	}
	inc.State = domain.IncidentDispatching
	inc.AssignedVolunteerID = nil
	inc.AssignedAt = nil
	return true, nil
}

func snapshot(inc *domain.Incident) *domain.Incident {
	cp := *inc
	if inc.AssignedVolunteerID != nil {
		volID := *inc.AssignedVolunteerID
		cp.AssignedVolunteerID = &volID
	}
	if inc.AssignedAt != nil {
		at := *inc.AssignedAt
		cp.AssignedAt = &at
	}
	cp.OfferHistory = make([]domain.OfferRecord, len(inc.OfferHistory))
	copy(cp.OfferHistory, inc.OfferHistory)
	return &cp
}

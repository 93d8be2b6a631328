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

// VolunteerRegistry is a mutex-guarded in-memory implementation of the
// volunteer availability store. TryReserve/Release are the only operations
// that move a volunteer between idle and busy, and both are single
// check-and-set steps under the lock.
type VolunteerRegistry struct {
	mu         sync.Mutex
	volunteers map[uuid.UUID]*domain.Volunteer
}

func NewVolunteerRegistry() *VolunteerRegistry {
	return &VolunteerRegistry{volunteers: make(map[uuid.UUID]*domain.Volunteer)}
}

func (r *VolunteerRegistry) SetOnline(ctx context.Context, id uuid.UUID, pos domain.Position) error {
	if pos.UpdatedAt.IsZero() {
		pos.UpdatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.volunteers[id]
	if !ok {
		r.volunteers[id] = &domain.Volunteer{ID: id, Status: domain.VolunteerOnlineIdle, Position: pos}
		return nil
	}
	if v.Status == domain.VolunteerOnlineBusy {
		// Already online and working an incident; just refresh the position.
		v.Position = pos
		return nil
	}
	v.Status = domain.VolunteerOnlineIdle
	v.Position = pos
	return nil
}

func (r *VolunteerRegistry) SetOffline(ctx context.Context, id uuid.UUID) error {
	const op = "memory.Volunteer.SetOffline"

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.volunteers[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	v.Status = domain.VolunteerOffline
	v.ActiveIncidentID = nil
	return nil
}

func (r *VolunteerRegistry) UpdatePosition(ctx context.Context, id uuid.UUID, pos domain.Position) error {
	const op = "memory.Volunteer.UpdatePosition"

	if pos.UpdatedAt.IsZero() {
		pos.UpdatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.volunteers[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	if v.Status == domain.VolunteerOffline {
		return fmt.Errorf("%s: %w", op, e.ErrVolunteerOffline)
	}
	v.Position = pos
	return nil
}

// TryReserve atomically transitions online_idle → online_busy for the given
// incident. It reports false whenever the volunteer is not exactly idle; the
// caller treats that as a lost race, not an error.
func (r *VolunteerRegistry) TryReserve(ctx context.Context, id, incidentID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.volunteers[id]
	if !ok {
		return false, nil
	}
	if v.Status != domain.VolunteerOnlineIdle || v.ActiveIncidentID != nil {
		return false, nil
	}
	incID := incidentID
	v.Status = domain.VolunteerOnlineBusy
	v.ActiveIncidentID = &incID
	return true, nil
}

func (r *VolunteerRegistry) Release(ctx context.Context, id uuid.UUID) error {
	const op = "memory.Volunteer.Release"

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.volunteers[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	if v.Status != domain.VolunteerOnlineBusy {
		return nil
	}
	v.Status = domain.VolunteerOnlineIdle
	v.ActiveIncidentID = nil
	return nil
}

func (r *VolunteerRegistry) Get(ctx context.Context, id uuid.UUID) (*domain.Volunteer, error) {
	const op = "memory.Volunteer.Get"

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.volunteers[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	cp := *v
	if v.ActiveIncidentID != nil {
		incID := *v.ActiveIncidentID
		cp.ActiveIncidentID = &incID
	}
	return &cp, nil
}

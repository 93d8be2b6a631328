package geo

import (
	"context"

	"lifeline/internal/domain"

	"github.com/google/uuid"
)

// Registry is the volunteer availability store a Mirror wraps. It is the
// union of the registry methods the services and the dispatch coordinator
// consume.
type Registry interface {
	SetOnline(ctx context.Context, id uuid.UUID, pos domain.Position) error
	SetOffline(ctx context.Context, id uuid.UUID) error
	UpdatePosition(ctx context.Context, id uuid.UUID, pos domain.Position) error
	TryReserve(ctx context.Context, id, incidentID uuid.UUID) (bool, error)
	Release(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Volunteer, error)
}

// Mirror decorates a registry so every availability transition is reflected
// in the in-memory index. Only volunteers the registry reports as idle are
// indexed: reserving removes the volunteer from the ranking, releasing puts
// them back at their last known position. A busy volunteer that refreshes
// its presence or pings a position stays out of the ranking.
type Mirror struct {
	registry Registry
	index    *Index
}

func NewMirror(registry Registry, index *Index) *Mirror {
	return &Mirror{registry: registry, index: index}
}

func (m *Mirror) SetOnline(ctx context.Context, id uuid.UUID, pos domain.Position) error {
	if err := m.registry.SetOnline(ctx, id, pos); err != nil {
		return err
	}
	return m.refresh(ctx, id)
}

func (m *Mirror) SetOffline(ctx context.Context, id uuid.UUID) error {
	if err := m.registry.SetOffline(ctx, id); err != nil {
		return err
	}
	m.index.Remove(id)
	return nil
}

func (m *Mirror) UpdatePosition(ctx context.Context, id uuid.UUID, pos domain.Position) error {
	if err := m.registry.UpdatePosition(ctx, id, pos); err != nil {
		return err
	}
	return m.refresh(ctx, id)
}

func (m *Mirror) TryReserve(ctx context.Context, id, incidentID uuid.UUID) (bool, error) {
	reserved, err := m.registry.TryReserve(ctx, id, incidentID)
	if err != nil {
		return false, err
	}
	if reserved {
		m.index.Remove(id)
	}
	return reserved, nil
}

func (m *Mirror) Release(ctx context.Context, id uuid.UUID) error {
	if err := m.registry.Release(ctx, id); err != nil {
		return err
	}
	return m.refresh(ctx, id)
}

func (m *Mirror) Get(ctx context.Context, id uuid.UUID) (*domain.Volunteer, error) {
	return m.registry.Get(ctx, id)
}

// refresh re-reads the registry row and syncs the index entry to it: indexed
// while idle, absent otherwise.
func (m *Mirror) refresh(ctx context.Context, id uuid.UUID) error {
	v, err := m.registry.Get(ctx, id)
	if err != nil {
		return err
	}
	if v.Status == domain.VolunteerOnlineIdle {
		m.index.Upsert(id, v.Position)
	} else {
		m.index.Remove(id)
	}
	return nil
}

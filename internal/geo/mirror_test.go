package geo

import (
	"context"
	"testing"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/storage/memory"

	"github.com/google/uuid"
)

type mirrorFixture struct {
	registry *memory.VolunteerRegistry
	index    *Index
	mirror   *Mirror
}

func newMirrorFixture() *mirrorFixture {
	registry := memory.NewVolunteerRegistry()
	index := NewIndex(5 * time.Minute)
	return &mirrorFixture{
		registry: registry,
		index:    index,
		mirror:   NewMirror(registry, index),
	}
}

func livePos(lat, lng float64) domain.Position {
	return domain.Position{Lat: lat, Lng: lng, UpdatedAt: time.Now().UTC()}
}

func (f *mirrorFixture) ranked(t *testing.T) map[uuid.UUID]bool {
	t.Helper()
	got, err := f.index.NearestIdle(context.Background(), 55.75, 37.61, 10, 50)
	if err != nil {
		t.Fatalf("NearestIdle: %v", err)
	}
	ids := make(map[uuid.UUID]bool, len(got))
	for _, c := range got {
		ids[c.VolunteerID] = true
	}
	return ids
}

func TestMirror_ReserveRemovesFromRanking(t *testing.T) {
	t.Parallel()

	f := newMirrorFixture()
	ctx := context.Background()

	near := uuid.New()
	far := uuid.New()
	if err := f.mirror.SetOnline(ctx, near, livePos(55.751, 37.61)); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if err := f.mirror.SetOnline(ctx, far, livePos(55.76, 37.61)); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}

	ok, err := f.mirror.TryReserve(ctx, near, uuid.New())
	if err != nil || !ok {
		t.Fatalf("TryReserve: ok=%v err=%v", ok, err)
	}

	ids := f.ranked(t)
	if ids[near] {
		t.Fatalf("reserved volunteer must drop out of the ranking")
	}
	if !ids[far] {
		t.Fatalf("idle volunteer must stay ranked")
	}
}

func TestMirror_ReleaseRestoresRanking(t *testing.T) {
	t.Parallel()

	f := newMirrorFixture()
	ctx := context.Background()

	volID := uuid.New()
	if err := f.mirror.SetOnline(ctx, volID, livePos(55.751, 37.61)); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if ok, err := f.mirror.TryReserve(ctx, volID, uuid.New()); err != nil || !ok {
		t.Fatalf("TryReserve: ok=%v err=%v", ok, err)
	}
	if err := f.mirror.Release(ctx, volID); err != nil {
		t.Fatalf("Release: %v", err)
	}

	if !f.ranked(t)[volID] {
		t.Fatalf("released volunteer must return to the ranking")
	}
}

func TestMirror_BusyReOnlineStaysUnranked(t *testing.T) {
	t.Parallel()

	f := newMirrorFixture()
	ctx := context.Background()

	volID := uuid.New()
	if err := f.mirror.SetOnline(ctx, volID, livePos(55.751, 37.61)); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if ok, err := f.mirror.TryReserve(ctx, volID, uuid.New()); err != nil || !ok {
		t.Fatalf("TryReserve: ok=%v err=%v", ok, err)
	}

	// Presence refresh keeps the reservation; it must not re-rank the
	// volunteer.
	if err := f.mirror.SetOnline(ctx, volID, livePos(55.752, 37.61)); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if f.ranked(t)[volID] {
		t.Fatalf("busy volunteer re-ranked by a presence refresh")
	}
}

func TestMirror_BusyPositionPingStaysUnranked(t *testing.T) {
	t.Parallel()

	f := newMirrorFixture()
	ctx := context.Background()

	volID := uuid.New()
	if err := f.mirror.SetOnline(ctx, volID, livePos(55.751, 37.61)); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if ok, err := f.mirror.TryReserve(ctx, volID, uuid.New()); err != nil || !ok {
		t.Fatalf("TryReserve: ok=%v err=%v", ok, err)
	}

	if err := f.mirror.UpdatePosition(ctx, volID, livePos(55.752, 37.61)); err != nil {
		t.Fatalf("UpdatePosition: %v", err)
	}
	if f.ranked(t)[volID] {
		t.Fatalf("busy volunteer re-ranked by a position ping")
	}
}

func TestMirror_OfflineRemovesFromRanking(t *testing.T) {
	t.Parallel()

	f := newMirrorFixture()
	ctx := context.Background()

	volID := uuid.New()
	if err := f.mirror.SetOnline(ctx, volID, livePos(55.751, 37.61)); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if err := f.mirror.SetOffline(ctx, volID); err != nil {
		t.Fatalf("SetOffline: %v", err)
	}

	if f.ranked(t)[volID] {
		t.Fatalf("offline volunteer must drop out of the ranking")
	}
}

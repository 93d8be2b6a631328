package geo

import (
	"context"
	"sort"
	"sync"
	"time"

	"lifeline/internal/domain"

	"github.com/google/uuid"
)

// Candidate is one ranked result of a nearest query.
type Candidate struct {
	VolunteerID uuid.UUID
	DistanceKM  float64
}

// Index is an in-memory spatial index over idle volunteers' last known
// positions. A Mirror around the registry keeps it consistent: a volunteer
// is upserted when it is idle with a fresh position, and removed when it is
// reserved or goes offline, so everything present is rankable.
//
// Lookups are a linear scan with haversine distance; at the volunteer counts
// this serves, that is cheaper than maintaining a tree.
type Index struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]domain.Position
	maxAge  time.Duration
	now     func() time.Time
}

func NewIndex(positionMaxAge time.Duration) *Index {
	return &Index{
		entries: make(map[uuid.UUID]domain.Position),
		maxAge:  positionMaxAge,
		now:     time.Now,
	}
}

func (x *Index) Upsert(volunteerID uuid.UUID, pos domain.Position) {
	x.mu.Lock()
	x.entries[volunteerID] = pos
	x.mu.Unlock()
}

func (x *Index) Remove(volunteerID uuid.UUID) {
	x.mu.Lock()
	delete(x.entries, volunteerID)
	x.mu.Unlock()
}

// NearestIdle returns up to k volunteers within maxRadiusKM of the point,
// ascending by distance. Positions older than the freshness threshold are
// excluded entirely, not deprioritized. Ties prefer the freshest position.
func (x *Index) NearestIdle(ctx context.Context, lat, lng float64, k int, maxRadiusKM float64) ([]Candidate, error) {
	cutoff := x.now().Add(-x.maxAge)

	x.mu.RLock()
	type ranked struct {
		Candidate
		updatedAt time.Time
	}
	found := make([]ranked, 0, len(x.entries))
	for id, pos := range x.entries {
		if pos.UpdatedAt.Before(cutoff) {
			continue
		}
		d := HaversineKM(lat, lng, pos.Lat, pos.Lng)
		if d > maxRadiusKM {
			continue
		}
		found = append(found, ranked{Candidate{VolunteerID: id, DistanceKM: d}, pos.UpdatedAt})
	}
	x.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool {
		if found[i].DistanceKM != found[j].DistanceKM {
			return found[i].DistanceKM < found[j].DistanceKM
		}
		return found[i].updatedAt.After(found[j].updatedAt)
	})

	if k > 0 && len(found) > k {
		found = found[:k]
	}

	out := make([]Candidate, len(found))
	for i, r := range found {
		out[i] = r.Candidate
	}
	return out, nil
}

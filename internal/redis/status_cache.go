package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lifeline/internal/domain"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// StatusCache keeps short-lived incident status snapshots for the patient
// polling endpoint, so the "locating / waiting / assigned" display does not
// hammer the incident store.
type StatusCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewStatusCache(r *Redis) *StatusCache {
	return &StatusCache{
		client: r.Client,
		ttl:    5 * time.Second,
	}
}

func statusKey(incidentID uuid.UUID) string { return "incidents:status:" + incidentID.String() }

func (c *StatusCache) Get(ctx context.Context, incidentID uuid.UUID) (*domain.IncidentStatusResponse, error) {
	data, err := c.client.Get(ctx, statusKey(incidentID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var status domain.IncidentStatusResponse
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *StatusCache) Set(ctx context.Context, status domain.IncidentStatusResponse) error {
	b, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statusKey(status.IncidentID), b, c.ttl).Err()
}

func (c *StatusCache) Invalidate(ctx context.Context, incidentID uuid.UUID) error {
	return c.client.Del(ctx, statusKey(incidentID)).Err()
}

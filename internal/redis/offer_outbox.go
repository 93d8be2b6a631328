package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lifeline/internal/domain"
	"lifeline/pkg/e"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// OfferOutbox delivers assignment offers to volunteer devices through a
// per-volunteer Redis list, pulled by the volunteer boundary with a blocking
// pop. Delivery is at-least-once and carries no acknowledgment; the dispatch
// coordinator's own deadline timer is authoritative for timeouts.
type OfferOutbox struct {
	client *redis.Client
}

func NewOfferOutbox(client *redis.Client) *OfferOutbox {
	return &OfferOutbox{client: client}
}

func offersKey(volunteerID uuid.UUID) string    { return "offers:" + volunteerID.String() }
func cancelledKey(volunteerID uuid.UUID) string { return "offers:cancelled:" + volunteerID.String() }

func (o *OfferOutbox) Offer(ctx context.Context, volunteerID uuid.UUID, summary domain.OfferSummary) error {
	b, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return o.client.LPush(ctx, offersKey(volunteerID), b).Err()
}

// CancelOffer revokes a still-pending offer. The offer payload may already be
// queued (or popped) on the device side, so revocation is a tombstone the
// pull path checks rather than a list removal.
func (o *OfferOutbox) CancelOffer(ctx context.Context, volunteerID, incidentID uuid.UUID) error {
	key := cancelledKey(volunteerID)
	if err := o.client.SAdd(ctx, key, incidentID.String()).Err(); err != nil {
		return err
	}
	return o.client.Expire(ctx, key, 10*time.Minute).Err()
}

// PullNext blocks up to timeout for the next live offer. Revoked and
// already-expired offers are skipped silently; the volunteer never sees them.
func (o *OfferOutbox) PullNext(ctx context.Context, volunteerID uuid.UUID, timeout time.Duration) (*domain.OfferSummary, error) {
	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, e.ErrOfferQueueEmpty
		}

		res, err := o.client.BRPop(ctx, remaining, offersKey(volunteerID)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, e.ErrOfferQueueEmpty
			}
			return nil, err
		}
		if len(res) < 2 {
			return nil, e.ErrOfferQueueEmpty
		}

		var summary domain.OfferSummary
		if err := json.Unmarshal([]byte(res[1]), &summary); err != nil {
			return nil, err
		}

		if time.Now().After(summary.Deadline) {
			continue
		}
		revoked, err := o.client.SIsMember(ctx, cancelledKey(volunteerID), summary.IncidentID.String()).Result()
		if err != nil {
			return nil, err
		}
		if revoked {
			continue
		}

		return &summary, nil
	}
}

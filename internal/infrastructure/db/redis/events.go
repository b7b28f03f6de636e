package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/identium/auth-system/internal/core/domain"
)

const (
	eventTrailCap = 100
	eventTrailTTL = 30 * 24 * time.Hour
)

// EventRepository keeps a capped per-user audit trail of security events in
// a Redis list, newest first.
// Key format: user_events:<user_id>
type EventRepository struct {
	client *redis.Client
}

func NewEventRepository(client *redis.Client) *EventRepository {
	return &EventRepository{client: client}
}

// Append pushes the event onto the user's trail, trims it to eventTrailCap
// entries, and refreshes the trail's expiry.
func (r *EventRepository) Append(ctx context.Context, event domain.UserEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	key := r.key(event.UserID)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, eventTrailCap-1)
	pipe.Expire(ctx, key, eventTrailTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Recent returns up to limit most recent events for the user.
func (r *EventRepository) Recent(ctx context.Context, userID string, limit int) ([]domain.UserEvent, error) {
	if limit < 1 || limit > eventTrailCap {
		limit = eventTrailCap
	}

	raw, err := r.client.LRange(ctx, r.key(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	events := make([]domain.UserEvent, 0, len(raw))
	for _, item := range raw {
		var event domain.UserEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *EventRepository) key(userID string) string {
	return "user_events:" + userID
}

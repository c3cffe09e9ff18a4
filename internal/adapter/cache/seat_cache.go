package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

// SeatCache stores seat maps in Redis as JSON under seats:<event_id>.
type SeatCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeatCache(client *redis.Client, ttl time.Duration) *SeatCache {
	return &SeatCache{client: client, ttl: ttl}
}

func SeatKey(eventID uuid.UUID) string {
	return fmt.Sprintf("seats:%s", eventID.String())
}

func (c *SeatCache) Get(ctx context.Context, eventID uuid.UUID) (*domain.SeatMap, bool, error) {
	raw, err := c.client.Get(ctx, SeatKey(eventID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("seat cache get: %w", err)
	}

	var m domain.SeatMap
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		// A stale or foreign value counts as a miss.
		return nil, false, nil
	}
	return &m, true, nil
}

func (c *SeatCache) Set(ctx context.Context, eventID uuid.UUID, m *domain.SeatMap) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("seat cache encode: %w", err)
	}
	if err := c.client.Set(ctx, SeatKey(eventID), string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("seat cache set: %w", err)
	}
	return nil
}

func (c *SeatCache) Invalidate(ctx context.Context, eventID uuid.UUID) error {
	if err := c.client.Del(ctx, SeatKey(eventID)).Err(); err != nil {
		return fmt.Errorf("seat cache del: %w", err)
	}
	return nil
}

// Package hunts keeps finished hunt summaries in Redis so callers that
// started a hunt asynchronously can collect the result.
package hunts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lead-hunter/internal/models"
)

// ErrNotFound means the hunt is unknown, still running, or expired.
var ErrNotFound = errors.New("hunt summary not found")

type Cache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewCache(client redis.Cmdable, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = "hunter"
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache) key(huntID string) string {
	return fmt.Sprintf("%s:hunt:%s", c.prefix, huntID)
}

func (c *Cache) Save(ctx context.Context, summary *models.HuntSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode hunt summary: %w", err)
	}
	if err := c.client.Set(ctx, c.key(summary.HuntID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache hunt summary: %w", err)
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, huntID string) (*models.HuntSummary, error) {
	data, err := c.client.Get(ctx, c.key(huntID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read hunt summary: %w", err)
	}

	var summary models.HuntSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode hunt summary: %w", err)
	}
	return &summary, nil
}

package leads

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDeduper remembers which phones were already turned into leads for a
// term, so repeated hunts skip them before touching Postgres.
type RedisDeduper struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisDeduper(client redis.Cmdable, prefix string, ttl time.Duration) *RedisDeduper {
	if prefix == "" {
		prefix = "hunter"
	}
	return &RedisDeduper{client: client, prefix: prefix, ttl: ttl}
}

func (d *RedisDeduper) key(term, phone string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(term))))
	return fmt.Sprintf("%s:seen:%s:%s", d.prefix, hex.EncodeToString(sum[:]), phone)
}

// Claim returns true the first time a phone is seen for term within ttl.
func (d *RedisDeduper) Claim(ctx context.Context, term, phone string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(term, phone), 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

// Release forgets a claim, used when the insert behind it failed.
func (d *RedisDeduper) Release(ctx context.Context, term, phone string) error {
	if err := d.client.Del(ctx, d.key(term, phone)).Err(); err != nil {
		return fmt.Errorf("dedup release: %w", err)
	}
	return nil
}

package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper suppresses duplicate webhook deliveries using a redis SetNX lock
// keyed by source and external event ID.
type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce returns true if this source/eventID pair is seen for the first
// time within the TTL. When redis is unavailable it returns true so
// deliveries are processed rather than dropped.
func (d *Deduper) AcquireOnce(ctx context.Context, source, eventID string) bool {
	key := fmt.Sprintf("dedup:%s:%s", source, eventID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupChecker remembers which creation notifications were already sent.
// Key format: buch:notified:<buch_id>
type DedupChecker struct {
	client redis.Cmdable
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client redis.Cmdable) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether a notification for buchID has already been sent.
func (d *DedupChecker) IsDuplicate(ctx context.Context, buchID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(buchID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that the notification for buchID was sent (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, buchID string) error {
	return d.client.Set(ctx, d.key(buchID), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(buchID string) string {
	return keyPrefix + "notified:" + buchID
}

package redis

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// MessageDedup provides a redelivery fast-path backed by Redis, keyed on a
// checksum of the raw message. Key format: events:seen:<fnv64a>.
// The projection mutators are idempotent regardless; this only short-circuits
// exact redeliveries inside the TTL window.
type MessageDedup struct {
	client *redis.Client
}

// NewMessageDedup creates a MessageDedup wrapping the given Redis client.
func NewMessageDedup(client *redis.Client) *MessageDedup {
	return &MessageDedup{client: client}
}

// IsDuplicate reports whether this exact message has already been processed.
func (d *MessageDedup) IsDuplicate(ctx context.Context, raw []byte) (bool, error) {
	n, err := d.client.Exists(ctx, key(raw)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this message has been processed (expires after dedupTTL).
func (d *MessageDedup) Mark(ctx context.Context, raw []byte) error {
	return d.client.Set(ctx, key(raw), "1", dedupTTL).Err()
}

func key(raw []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(raw)
	return fmt.Sprintf("events:seen:%x", h.Sum64())
}

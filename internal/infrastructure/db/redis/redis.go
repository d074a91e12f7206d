// Package redis provides the Redis client used for the message dedup
// fast-path in front of the idempotent projection mutators.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Config carries the connection settings for the dedup store.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect builds a client and proves connectivity with a ping. Dial, read,
// and write share the configured timeout: dedup is advisory, so a slow Redis
// must fail a lookup quickly rather than stall the consume loop.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

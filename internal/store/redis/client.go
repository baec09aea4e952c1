// Package redis provides a Redis-backed session store. Entries carry a TTL equal to their
// remaining lifetime, so Redis expires them without a sweeper.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrEmptyAddress is returned when no Redis address is configured.
var ErrEmptyAddress = errors.New("empty redis address")

// Config holds connection settings for Redis.
type Config struct {
	Addr     string
	Password string
	DB       int

	// PingTimeout bounds the connectivity check. Default: 2s
	PingTimeout time.Duration
}

// NewClient creates a Redis client and pings it to verify connectivity.
func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, ErrEmptyAddress
	}
	if cfg.PingTimeout == 0 {
		cfg.PingTimeout = 2 * time.Second
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

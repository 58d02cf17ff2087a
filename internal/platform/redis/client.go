package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"idgate/internal/platform/config"
)

// Client is the go-redis client backing the orphan ledger. It doubles as a
// readiness check.
type Client struct {
	*redis.Client
}

// New connects and pings. An empty URL means no Redis is configured and
// yields a nil client so callers fall back to the in-memory ledger.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health satisfies the readiness checker.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

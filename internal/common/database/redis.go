// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"lead-distribution-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the go-redis client for lifecycle management. Workers
// that cache pools or plan tiers use the exported Client directly.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds the client. Timeouts are deliberately short: Redis is a
// cache here, and a slow cache lookup must not stall job handling longer
// than the database query it was meant to avoid.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisClient{Client: rdb}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

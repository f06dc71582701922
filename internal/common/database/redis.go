// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"grantmatch-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient owns the profile-cache connection. The find-matching-programs
// worker takes the raw *redis.Client for its cache-aside reads.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds the client. Pool sizing comes from config; the dial
// and command timeouts stay short because every cache read has a
// Postgres fallback behind it.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping reports whether the cache is reachable.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

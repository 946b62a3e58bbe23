// internal/common/database/redis.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"doctor-ranking/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the connection shared by the profile store and the rating
// statistics cache.
type RedisClient struct {
	Client  *redis.Client
	timeout time.Duration
}

// NewRedis builds the shared client. Timeout bounds each command and Ping.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is required")
	}
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.PoolSize / 4,
	})

	return &RedisClient{Client: rdb, timeout: timeout}, nil
}

// Ping checks the server within the command timeout.
func (c *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

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

func (c *RedisClient) GetClient() *redis.Client {
	return c.Client
}

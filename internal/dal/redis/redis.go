package redis

import (
	"context"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Client represents a Redis client.
type Client struct {
	rdb *goredis.Client
}

// Redis returns the underlying go-redis client.
func (c *Client) Redis() *goredis.Client {
	return c.rdb
}

// Close closes the connection pool for graceful shutdown.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// NewClientFromConfig connects to redis.addr. It returns nil when no address is
// configured, which disables create idempotency.
func NewClientFromConfig() *Client {
	addr := viper.GetString("redis.addr")
	if addr == "" {
		slog.Warn("Redis address not configured, idempotency keys are ignored")

		return nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       viper.GetInt("redis.db"),
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		panic("failed to connect to redis: " + err.Error())
	}

	slog.Info("Redis connected", "addr", addr)

	return &Client{
		rdb: rdb,
	}
}

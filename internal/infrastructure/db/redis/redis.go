package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultClientName = "careneighbour-fanout"
	defaultPoolSize   = 10
)

// Config holds the connection settings of the notification fan-out client.
type Config struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration

	// ClientName is reported by CLIENT LIST so subscribers can be told apart.
	ClientName string
	PoolSize   int
}

func (c Config) options() *redis.Options {
	name := c.ClientName
	if name == "" {
		name = defaultClientName
	}
	pool := c.PoolSize
	if pool <= 0 {
		pool = defaultPoolSize
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		ClientName:   name,
		PoolSize:     pool,
		DialTimeout:  timeout,
		WriteTimeout: timeout,
	}
}

// Connect opens the fan-out client and pings it, so a wrong address or
// password fails at startup instead of on the first notification.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := cfg.options()
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	mu     sync.RWMutex
	client *redis.Client
)

// Config holds the Upstash (or any redis://, rediss://) connection settings.
type Config struct {
	URL      string
	Password string
}

// Client returns the shared client, or nil when Redis is not configured.
// Callers fall back to in-process state when it is nil.
func Client() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

// Use installs c as the shared client. Passing nil disables Redis.
func Use(c *redis.Client) {
	mu.Lock()
	defer mu.Unlock()
	client = c
}

// Initialize connects to cfg.URL and installs the client on success.
func Initialize(ctx context.Context, cfg Config) error {
	if cfg.URL == "" {
		return errors.New("redis: UPSTASH_REDIS_URL not configured")
	}

	// ParseURL enables TLS for rediss:// URLs.
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return fmt.Errorf("redis: invalid URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	c := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return fmt.Errorf("redis: connection failed: %w", err)
	}

	Use(c)
	return nil
}

// HealthCheck pings the shared client.
func HealthCheck(ctx context.Context) error {
	c := Client()
	if c == nil {
		return errors.New("redis: client not initialized")
	}
	return c.Ping(ctx).Err()
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// Package redis provides Redis connectivity for shared rate limiting.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"norelock.dev/moodmix/backend/internal/config"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

// KeyNamespace prefixes every key this service writes.
const KeyNamespace = "moodmix"

// Client wraps the Redis client with app-specific functionality
type Client struct {
	client *redis.Client
	logger *utils.Logger
}

// Options builds go-redis options from the application config.
func Options(cfg *config.Config) (*redis.Options, error) {
	rc := cfg.Database.Redis
	if len(rc.Addresses) == 0 {
		return nil, errors.New("no Redis address configured")
	}

	return &redis.Options{
		Addr:         rc.Addresses[0], // Use the first address in the list
		Username:     rc.Username,
		Password:     rc.Password,
		DB:           rc.Database,
		MaxRetries:   rc.MaxRetries,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	}, nil
}

// NewClient creates a new Redis client and checks the connection.
func NewClient(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*Client, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	logger = logger.Named("redis")

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, "addr", opts.Addr)
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}

	logger.Info("Connected to Redis", "addr", opts.Addr, "db", opts.DB)

	return &Client{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	err := c.client.Close()
	if err != nil {
		c.logger.Error("Failed to close Redis connection", err)
		return err
	}
	c.logger.Info("Closed Redis connection")
	return nil
}

// Client returns the underlying Redis client
func (c *Client) Client() *redis.Client {
	return c.client
}

// Logger returns the logger used by the client
func (c *Client) Logger() *utils.Logger {
	return c.logger
}

// Ping pings the Redis server
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.logger.Error("Failed to ping Redis", err)
		return err
	}
	return nil
}

// HealthCheck reports whether Redis answers a ping.
func (c *Client) HealthCheck(ctx context.Context) (system.HealthStatus, string) {
	if err := c.Ping(ctx); err != nil {
		return system.StatusDown, err.Error()
	}
	return system.StatusUp, ""
}

// FormatKey creates a namespaced Redis key
func FormatKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

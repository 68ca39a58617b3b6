package redisclient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetSnapshot retrieves a cached snapshot payload by graph version.
// Returns redis.Nil via the error when the version is not cached.
func (c *Client) GetSnapshot(ctx context.Context, version string) ([]byte, error) {
	return c.rdb.Get(ctx, fmt.Sprintf("snapshot:%s", version)).Bytes()
}

// SetSnapshot caches a snapshot payload by graph version with a TTL, so a
// republished version is picked up within one refresh interval.
func (c *Client) SetSnapshot(ctx context.Context, version string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("snapshot:%s", version), payload, ttl).Err()
}

// IsNotFound reports whether an error is a cache miss.
func IsNotFound(err error) bool {
	return err == redis.Nil
}

// GetCategoryLabel retrieves a cached classifier label for an item
// description under a given taxonomy version.
func (c *Client) GetCategoryLabel(ctx context.Context, graphVersion, description string) (string, error) {
	return c.rdb.Get(ctx, labelKey(graphVersion, description)).Result()
}

// SetCategoryLabel caches a classifier label. Classification is a pure
// function of (description, taxonomy version), so caching is sound.
func (c *Client) SetCategoryLabel(ctx context.Context, graphVersion, description, label string, ttl time.Duration) error {
	return c.rdb.Set(ctx, labelKey(graphVersion, description), label, ttl).Err()
}

func labelKey(graphVersion, description string) string {
	sum := sha256.Sum256([]byte(description))
	return fmt.Sprintf("label:%s:%s", graphVersion, hex.EncodeToString(sum[:8]))
}

// SetIdempotencyKey stores an idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("idempotency:%s", key), value, ttl).Err()
}

// CheckIdempotencyKey checks if an idempotency key exists
func (c *Client) CheckIdempotencyKey(ctx context.Context, key string) (bool, error) {
	result, err := c.rdb.Exists(ctx, fmt.Sprintf("idempotency:%s", key)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

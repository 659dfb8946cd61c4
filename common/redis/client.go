package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Client wraps redis.Client with common operations and instrumentation
type Client struct {
	redis  *redis.Client
	logger Logger
}

// NewClient creates a new Redis client wrapper
func NewClient(redisClient *redis.Client, logger Logger) *Client {
	return &Client{
		redis:  redisClient,
		logger: logger,
	}
}

// GetUnderlying returns the underlying redis.Client for advanced operations
func (c *Client) GetUnderlying() *redis.Client {
	return c.redis
}

// SetWithExpiry sets a key with expiration
func (c *Client) SetWithExpiry(ctx context.Context, key, value string, expiry time.Duration) error {
	err := c.redis.Set(ctx, key, value, expiry).Err()
	if err != nil {
		c.logger.Error("redis SET failed", "key", key, "error", err)
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	c.logger.Debug("redis SET", "key", key, "expiry", expiry)
	return nil
}

// Get retrieves a value by key
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		c.logger.Debug("redis GET key not found", "key", key)
		return "", fmt.Errorf("key not found: %s", key)
	}
	if err != nil {
		c.logger.Error("redis GET failed", "key", key, "error", err)
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	c.logger.Debug("redis GET", "key", key)
	return val, nil
}

// SetNX sets a key only if it doesn't exist (for idempotency checks)
func (c *Client) SetNX(ctx context.Context, key, value string, expiry time.Duration) (bool, error) {
	wasSet, err := c.redis.SetNX(ctx, key, value, expiry).Result()
	if err != nil {
		c.logger.Error("redis SETNX failed", "key", key, "error", err)
		return false, fmt.Errorf("failed to setnx key %s: %w", key, err)
	}
	c.logger.Debug("redis SETNX", "key", key, "was_set", wasSet)
	return wasSet, nil
}

// Delete removes a key
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	err := c.redis.Del(ctx, keys...).Err()
	if err != nil {
		c.logger.Error("redis DEL failed", "keys", keys, "error", err)
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	c.logger.Debug("redis DEL", "keys", keys)
	return nil
}

// SetHashFields sets multiple hash fields at once
func (c *Client) SetHashFields(ctx context.Context, key string, fields map[string]interface{}) error {
	err := c.redis.HSet(ctx, key, fields).Err()
	if err != nil {
		c.logger.Error("redis HSET failed", "key", key, "error", err)
		return fmt.Errorf("failed to set hash %s: %w", key, err)
	}
	c.logger.Debug("redis HSET", "key", key, "field_count", len(fields))
	return nil
}

// GetAllHash retrieves all fields and values of a hash
func (c *Client) GetAllHash(ctx context.Context, key string) (map[string]string, error) {
	val, err := c.redis.HGetAll(ctx, key).Result()
	if err != nil {
		c.logger.Error("redis HGETALL failed", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get all hash fields %s: %w", key, err)
	}
	c.logger.Debug("redis HGETALL", "key", key, "field_count", len(val))
	return val, nil
}

// IncrementHash increments a hash field and returns the new value
func (c *Client) IncrementHash(ctx context.Context, key, field string, increment int64) (int64, error) {
	val, err := c.redis.HIncrBy(ctx, key, field, increment).Result()
	if err != nil {
		c.logger.Error("redis HINCRBY failed", "key", key, "field", field, "error", err)
		return 0, fmt.Errorf("failed to increment hash %s field %s: %w", key, field, err)
	}
	c.logger.Debug("redis HINCRBY", "key", key, "field", field, "value", val)
	return val, nil
}

// AddToSet adds members to a set
func (c *Client) AddToSet(ctx context.Context, key string, members ...interface{}) error {
	err := c.redis.SAdd(ctx, key, members...).Err()
	if err != nil {
		c.logger.Error("redis SADD failed", "key", key, "error", err)
		return fmt.Errorf("failed to sadd to %s: %w", key, err)
	}
	c.logger.Debug("redis SADD", "key", key, "count", len(members))
	return nil
}

// RemoveFromSet removes members from a set
func (c *Client) RemoveFromSet(ctx context.Context, key string, members ...interface{}) error {
	err := c.redis.SRem(ctx, key, members...).Err()
	if err != nil {
		c.logger.Error("redis SREM failed", "key", key, "error", err)
		return fmt.Errorf("failed to srem from %s: %w", key, err)
	}
	c.logger.Debug("redis SREM", "key", key, "count", len(members))
	return nil
}

// SetMembers returns all members of a set
func (c *Client) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := c.redis.SMembers(ctx, key).Result()
	if err != nil {
		c.logger.Error("redis SMEMBERS failed", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get members of %s: %w", key, err)
	}
	c.logger.Debug("redis SMEMBERS", "key", key, "count", len(members))
	return members, nil
}

// Expire sets a TTL on a key
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	err := c.redis.Expire(ctx, key, ttl).Err()
	if err != nil {
		c.logger.Error("redis EXPIRE failed", "key", key, "error", err)
		return fmt.Errorf("failed to expire key %s: %w", key, err)
	}
	c.logger.Debug("redis EXPIRE", "key", key, "ttl", ttl)
	return nil
}

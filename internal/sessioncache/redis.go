package sessioncache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/apex/internal/timing"
)

// RedisCache is an alternative Cache backend for deployments that share one
// cache across instances. Entries are written without expiry: completed
// sessions never go stale.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client, shared with the publisher.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func redisKey(key timing.SessionKey) string {
	return "sessions:" + key.String()
}

// Has reports whether an entry exists for the key.
func (c *RedisCache) Has(ctx context.Context, key timing.SessionKey) (bool, error) {
	n, err := c.client.Exists(ctx, redisKey(key)).Result()
	if err != nil {
		return false, &StorageError{Op: "has", Key: key, Err: err}
	}
	return n > 0, nil
}

// Read returns the blob for the key, or ErrCacheMiss if absent.
func (c *RedisCache) Read(ctx context.Context, key timing.SessionKey) ([]byte, error) {
	blob, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Key: key, Err: err}
	}
	return blob, nil
}

// Write stores the blob for the key. Redis SET replaces the value in one
// step, so concurrent readers never see a torn blob.
func (c *RedisCache) Write(ctx context.Context, key timing.SessionKey, blob []byte) error {
	if err := c.client.Set(ctx, redisKey(key), blob, 0).Err(); err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	return nil
}

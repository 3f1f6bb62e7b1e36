package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient creates a new Redis client and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// RedisCounterStore implements ratelimit.Store on Redis. INCR is atomic, so
// concurrent callers always see distinct counts.
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore creates a counter store over an existing client.
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// errNoClient is returned when the limiter runs without a Redis connection;
// callers fail open on it.
var errNoClient = errors.New("redis client not configured")

// Incr increments the key in a single round trip and stamps the TTL when the
// counter is new.
func (s *RedisCounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if s.client == nil {
		return 0, errNoClient
	}
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// First call in this window owns the expiry.
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Get returns the current counter value, 0 when the key does not exist.
func (s *RedisCounterStore) Get(ctx context.Context, key string) (int64, error) {
	if s.client == nil {
		return 0, errNoClient
	}
	count, err := s.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

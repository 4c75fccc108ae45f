package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suoapvs/alexcoffee/internal/cart"
)

const redisKeyPrefix = "cart:"

// RedisStore persists carts as JSON snapshots with a TTL. The flow is
// read-modify-write: handlers load the cart, mutate it and Save it
// back within the same request.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Get loads the session's cart, returning an empty cart for a new or
// expired session.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*cart.ShoppingCart, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	c := cart.New()
	if err := json.Unmarshal(data, c); err != nil {
		// A corrupt snapshot should not wedge the session.
		return cart.New(), nil
	}
	return c, nil
}

// Save writes the cart snapshot back, refreshing the TTL.
func (s *RedisStore) Save(ctx context.Context, sessionID string, c *cart.ShoppingCart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete drops the session's cart.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// Count returns the number of persisted carts. Empty carts are saved
// too, so this overcounts compared to the memory store; the gauge it
// feeds only needs to trend correctly.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	var count int
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan carts: %w", err)
	}
	return count, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

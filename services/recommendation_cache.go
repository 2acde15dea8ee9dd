package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisRecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRecommendationCache(client *redis.Client, ttl time.Duration) *RedisRecommendationCache {
	return &RedisRecommendationCache{client: client, ttl: ttl}
}

// ConnectRedis opens a client and checks it with PING.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (c *RedisRecommendationCache) Get(ctx context.Context, key string) ([]string, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var recs []string
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false, fmt.Errorf("decode cached recommendations: %w", err)
	}
	return recs, true, nil
}

func (c *RedisRecommendationCache) Set(ctx context.Context, key string, recs []string) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

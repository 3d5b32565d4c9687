package cache

import (
	"context"
	"errors"
	"fmt"

	"quorum-booking/core/constants"
	"quorum-booking/core/logger"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	GetDisplayName(ctx context.Context, id string) (string, bool, error)
	SetDisplayNames(ctx context.Context, names map[string]string) error
	Ping(ctx context.Context) error
	Close() error
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg RedisConfig) Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisCache{client: client}
}

// NewRedisCacheFromClient wraps an existing client, mainly for tests.
func NewRedisCacheFromClient(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) GetDisplayName(ctx context.Context, id string) (string, bool, error) {
	name, err := c.client.HGet(ctx, constants.RedisKeyDisplayNames, id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		logger.Error("Cache:GetDisplayName:Error", "id", id, "error", err)
		return "", false, err
	}
	return name, true, nil
}

func (c *redisCache) SetDisplayNames(ctx context.Context, names map[string]string) error {
	if len(names) == 0 {
		return nil
	}
	values := make(map[string]any, len(names))
	for id, name := range names {
		values[id] = name
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, constants.RedisKeyDisplayNames, values)
	pipe.Expire(ctx, constants.RedisKeyDisplayNames, constants.DisplayNameCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Cache:SetDisplayNames:Error", "count", len(names), "error", err)
		return fmt.Errorf("failed to store display names: %w", err)
	}
	return nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

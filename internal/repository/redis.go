package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fitclub/internal/config"
	"fitclub/internal/models"

	"github.com/redis/go-redis/v9"
)

const pendingCountsKey = "admin:pending_counts"

// RedisCacheRepository кэширует счётчики заявок и ведёт ограничение
// частоты сообщений бота в Redis.
type RedisCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisCacheRepository(client *redis.Client, ttl time.Duration) *RedisCacheRepository {
	return &RedisCacheRepository{client: client, ttl: ttl}
}

func (r *RedisCacheRepository) GetPendingCounts(ctx context.Context) (*models.PendingCounts, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, pendingCountsKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending counts from redis: %w", err)
	}

	var counts models.PendingCounts
	if err := json.Unmarshal([]byte(val), &counts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending counts: %w", err)
	}
	return &counts, nil
}

func (r *RedisCacheRepository) SetPendingCounts(ctx context.Context, counts *models.PendingCounts) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to marshal pending counts: %w", err)
	}
	if err := r.client.Set(ctx, pendingCountsKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set pending counts in redis: %w", err)
	}
	return nil
}

func (r *RedisCacheRepository) InvalidatePendingCounts(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, pendingCountsKey).Err(); err != nil {
		return fmt.Errorf("failed to delete pending counts from redis: %w", err)
	}
	return nil
}

func (r *RedisCacheRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("rate_limit:%d", userID)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"flavorgraph/internal/infrastructure/config"
	"flavorgraph/internal/infrastructure/metrics"
	"flavorgraph/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisCache 以 Redis 為後端的共享快取
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	hits   int64
	misses int64
}

// NewRedis 建立 Redis 快取並測試連線
func NewRedis(ctx context.Context, cfg *config.Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線",
		zap.String("addr", cfg.Redis.Addr),
		zap.Int("db", cfg.Redis.DB),
		zap.Duration("ttl", cfg.Cache.TTL),
	)

	return &RedisCache{
		client: client,
		prefix: cfg.Redis.KeyPrefix,
		ttl:    cfg.Cache.TTL,
	}, nil
}

// Get 獲取緩存
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&r.misses, 1)
			metrics.RecordCacheMiss("redis")
			common.LogCacheMiss("redis", key)
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	atomic.AddInt64(&r.hits, 1)
	metrics.RecordCacheHit("redis")
	common.LogCacheHit("redis", key)
	return data, nil
}

// Set 設置緩存
func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 回傳快取統計
func (r *RedisCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"backend": "redis",
		"hits":    atomic.LoadInt64(&r.hits),
		"misses":  atomic.LoadInt64(&r.misses),
	}
}

// Close 關閉 Redis 連線
func (r *RedisCache) Close() error {
	return r.client.Close()
}

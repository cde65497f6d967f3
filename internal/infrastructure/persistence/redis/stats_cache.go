package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

// statsKey 看板统计缓存key
const statsKey = "pos:dashboard:stats"

// StatsCache 看板统计缓存
// 设计说明:
// 1. 值为JSON,短TTL(默认30秒),过期后由下一次查询重新计算
// 2. 订单结账/取消/删除后主动删除缓存
// 3. 缓存未命中返回(false, nil),Redis错误由调用方降级处理
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache 创建看板缓存
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Get 读取缓存并反序列化到dst
func (c *StatsCache) Get(ctx context.Context, dst any) (bool, error) {
	data, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// 缓存内容损坏,当作未命中
		return false, nil
	}
	return true, nil
}

// Set 写入缓存
func (c *StatsCache) Set(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.WithCause(apperrors.ErrInternal, err)
	}
	if err := c.client.Set(ctx, statsKey, data, c.ttl).Err(); err != nil {
		return apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return nil
}

// Invalidate 删除缓存
func (c *StatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, statsKey).Err(); err != nil {
		return apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return nil
}

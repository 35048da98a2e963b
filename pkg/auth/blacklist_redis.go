package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis键前缀
const blacklistKeyPrefix = "jwt:blacklist:"

// RedisBlacklist 基于Redis的黑名单，多实例共享，过期由Redis TTL处理
type RedisBlacklist struct {
	client *redis.Client
}

// NewRedisBlacklist 创建Redis黑名单
func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

// Add 将令牌添加到黑名单
func (b *RedisBlacklist) Add(ctx context.Context, token string, expireAt time.Time) error {
	ttl := time.Until(expireAt)
	if ttl <= 0 {
		return nil // 已过期的令牌无需添加
	}
	if err := b.client.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("添加令牌到黑名单失败: %w", err)
	}
	return nil
}

// Contains 检查令牌是否在黑名单中
func (b *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache 缓存接口
type Cache interface {
	// Get 获取缓存
	Get(ctx context.Context, key string) (string, error)

	// Set 设置缓存
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Delete 删除缓存
	Delete(ctx context.Context, keys ...string) error

	// DeleteByPrefix 删除指定前缀的全部缓存
	DeleteByPrefix(ctx context.Context, prefix string) error

	// GetJSON 获取JSON格式的缓存并反序列化
	GetJSON(ctx context.Context, key string, dest interface{}) error

	// SetJSON 序列化为JSON并设置缓存
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// 缓存键
const (
	CategoryListKey = "category:list"
	TagListKey      = "tag:list"
	FeaturedPrefix  = "article:featured:"
	FeaturedListKey = FeaturedPrefix + "%d" // 精选文章列表，按数量区分
)

// 缓存过期时间
const (
	CategoryListExpiration = 1 * time.Hour
	TagListExpiration      = 1 * time.Hour
	FeaturedExpiration     = 10 * time.Minute
)

// FeaturedKey 精选文章列表缓存键
func FeaturedKey(limit int) string {
	return fmt.Sprintf(FeaturedListKey, limit)
}

// IsMiss 判断是否为缓存未命中
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

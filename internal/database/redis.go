package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/nsxzhou1114/blog-platform/internal/config"
	"github.com/nsxzhou1114/blog-platform/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	rdb      *redis.Client
	redisOne sync.Once
)

// InitRedis 初始化Redis连接
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("连接redis失败: %w", err)
	}

	logger.Info("redis连接成功", zap.String("addr", cfg.Addr()))
	return client, nil
}

// GetRedis 获取Redis客户端实例，未启用时返回nil
func GetRedis() *redis.Client {
	cfg := config.GlobalConfig.Redis
	if !cfg.Enabled {
		return nil
	}

	var err error
	redisOne.Do(func() {
		rdb, err = InitRedis(&cfg)
		if err != nil {
			panic(fmt.Sprintf("redis初始化失败: %v", err))
		}
	})
	return rdb
}

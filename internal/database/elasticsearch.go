package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/nsxzhou1114/blog-platform/internal/config"
	"github.com/nsxzhou1114/blog-platform/internal/logger"
	"go.uber.org/zap"
)

var (
	es    *elasticsearch.Client
	esOne sync.Once
)

// InitElasticsearch 初始化Elasticsearch连接
func InitElasticsearch(cfg *config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	esConfig := elasticsearch.Config{
		Addresses: cfg.URLs,
	}
	if cfg.Username != "" && cfg.Password != "" {
		esConfig.Username = cfg.Username
		esConfig.Password = cfg.Password
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, fmt.Errorf("连接elasticsearch失败: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(context.Background()))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch健康检查失败: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch健康检查失败: %s", res.Status())
	}

	logger.Info("elasticsearch连接成功", zap.Strings("addresses", cfg.URLs))
	return client, nil
}

// GetES 获取Elasticsearch客户端实例，未启用或连接失败时返回nil，搜索回落到数据库
func GetES() *elasticsearch.Client {
	cfg := config.GlobalConfig.Elasticsearch
	if !cfg.Enabled {
		return nil
	}

	esOne.Do(func() {
		client, err := InitElasticsearch(&cfg)
		if err != nil {
			logger.Warn("elasticsearch不可用，搜索将使用数据库", zap.Error(err))
			return
		}
		es = client
	})
	return es
}

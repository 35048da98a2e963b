package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 搜索结果数量
const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	reindexBatchSize   = 100
)

// 搜索来源
const (
	SourceElasticsearch = "elasticsearch"
	SourceDatabase      = "database"
)

// SearchService 文章全文搜索，未启用Elasticsearch或查询失败时回落到数据库
type SearchService struct {
	db     *gorm.DB
	es     *elasticsearch.Client
	index  string
	logger *zap.SugaredLogger
}

// NewSearchService 创建搜索服务实例，es 为nil时仅使用数据库
func NewSearchService(db *gorm.DB, es *elasticsearch.Client, index string, logger *zap.SugaredLogger) *SearchService {
	if index == "" {
		index = "articles"
	}
	return &SearchService{db: db, es: es, index: index, logger: logger}
}

// Enabled 是否启用Elasticsearch
func (s *SearchService) Enabled() bool {
	return s.es != nil
}

// Search 搜索已发布文章
func (s *SearchService) Search(ctx context.Context, q string, limit int) (*dto.SearchResponse, error) {
	q = strings.TrimSpace(q)
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	if q == "" {
		return &dto.SearchResponse{Results: []dto.SearchResult{}, Source: s.source()}, nil
	}

	if s.Enabled() {
		results, err := s.searchES(ctx, q, limit)
		if err == nil {
			return &dto.SearchResponse{Results: results, Source: SourceElasticsearch}, nil
		}
		s.logger.Warnf("Elasticsearch搜索失败，改用数据库查询: %v", err)
	}

	results, err := s.searchDB(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	return &dto.SearchResponse{Results: results, Source: SourceDatabase}, nil
}

func (s *SearchService) source() string {
	if s.Enabled() {
		return SourceElasticsearch
	}
	return SourceDatabase
}

// esSearchResult Elasticsearch查询响应中用到的部分
type esSearchResult struct {
	Hits struct {
		Hits []struct {
			Score  float64               `json:"_score"`
			Source model.ArticleDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *SearchService) searchES(ctx context.Context, q string, limit int) ([]dto.SearchResult, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"multi_match": map[string]interface{}{
							"query":  q,
							"fields": []string{"title^3", "excerpt^2", "content"},
							"type":   "best_fields",
						},
					},
				},
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"published": true}},
				},
			},
		},
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("ES搜索错误: %s", res.String())
	}

	var result esSearchResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析ES响应失败: %w", err)
	}

	results := make([]dto.SearchResult, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		doc := hit.Source
		results = append(results, dto.SearchResult{
			ID:         doc.ID,
			Title:      doc.Title,
			Slug:       doc.Slug,
			Excerpt:    doc.Excerpt,
			Categories: doc.Categories,
			Tags:       doc.Tags,
			Score:      hit.Score,
			CreatedAt:  doc.CreatedAt,
		})
	}
	return results, nil
}

func (s *SearchService) searchDB(ctx context.Context, q string, limit int) ([]dto.SearchResult, error) {
	like := "%" + strings.ToLower(q) + "%"

	var articles []model.Article
	err := s.db.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		Where("articles.published = ?", true).
		Where(searchClause, like, like, like).
		Order("articles.created_at DESC").
		Order("articles.id DESC").
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("搜索文章失败: %w", err)
	}

	results := make([]dto.SearchResult, 0, len(articles))
	for i := range articles {
		doc := model.NewArticleDocument(&articles[i])
		results = append(results, dto.SearchResult{
			ID:         doc.ID,
			Title:      doc.Title,
			Slug:       doc.Slug,
			Excerpt:    doc.Excerpt,
			Categories: doc.Categories,
			Tags:       doc.Tags,
			CreatedAt:  doc.CreatedAt,
		})
	}
	return results, nil
}

// Index 写入或覆盖文章文档，失败只记录日志
func (s *SearchService) Index(ctx context.Context, article *model.Article) {
	if !s.Enabled() {
		return
	}
	if err := s.indexDocument(ctx, article); err != nil {
		s.logger.Errorf("索引文章失败: id=%d, %v", article.ID, err)
	}
}

func (s *SearchService) indexDocument(ctx context.Context, article *model.Article) error {
	data, err := json.Marshal(model.NewArticleDocument(article))
	if err != nil {
		return err
	}

	res, err := s.es.Index(
		s.index,
		bytes.NewReader(data),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(strconv.FormatUint(uint64(article.ID), 10)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ES索引错误: %s", res.String())
	}
	return nil
}

// Remove 删除文章文档，失败只记录日志
func (s *SearchService) Remove(ctx context.Context, articleID uint) {
	if !s.Enabled() {
		return
	}

	res, err := s.es.Delete(s.index, strconv.FormatUint(uint64(articleID), 10), s.es.Delete.WithContext(ctx))
	if err != nil {
		s.logger.Errorf("删除文章索引失败: id=%d, %v", articleID, err)
		return
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		s.logger.Errorf("删除文章索引失败: id=%d, %s", articleID, res.String())
	}
}

// EnsureIndex 索引不存在时按映射创建
func (s *SearchService) EnsureIndex(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	res, err := s.es.Indices.Exists([]string{s.index}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("检查索引失败: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = s.es.Indices.Create(
		s.index,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(strings.NewReader(model.ArticleIndexMapping)),
	)
	if err != nil {
		return fmt.Errorf("创建索引失败: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("创建索引失败: %s", res.String())
	}
	s.logger.Infof("已创建索引 %s", s.index)
	return nil
}

// Reindex 将全部文章重新写入索引，返回写入数量
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	if err := s.EnsureIndex(ctx); err != nil {
		return 0, err
	}

	indexed := 0
	var batch []model.Article
	err := s.db.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		FindInBatches(&batch, reindexBatchSize, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				if err := s.indexDocument(ctx, &batch[i]); err != nil {
					return fmt.Errorf("索引文章 %d 失败: %w", batch[i].ID, err)
				}
				indexed++
			}
			return nil
		}).Error
	if err != nil {
		return indexed, err
	}
	return indexed, nil
}

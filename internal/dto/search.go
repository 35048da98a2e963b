package dto

import "time"

// SearchQuery 文章搜索查询
type SearchQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1"`
}

// SearchResult 搜索结果
type SearchResult struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Excerpt    string    `json:"excerpt"`
	Categories []string  `json:"categories"`
	Tags       []string  `json:"tags"`
	Score      float64   `json:"score,omitempty"` // 仅Elasticsearch返回相关度
	CreatedAt  time.Time `json:"createdAt"`
}

// SearchResponse 搜索响应
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Source  string         `json:"source"` // elasticsearch | database
}

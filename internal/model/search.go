package model

import "time"

// ArticleDocument Elasticsearch文章文档
type ArticleDocument struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Excerpt    string    `json:"excerpt"`
	Content    string    `json:"content"`
	AuthorID   uint      `json:"author_id"`
	Categories []string  `json:"categories"`
	Tags       []string  `json:"tags"`
	Published  bool      `json:"published"`
	Featured   bool      `json:"featured"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewArticleDocument 由文章生成搜索文档，需要预加载分类和标签
func NewArticleDocument(a *Article) *ArticleDocument {
	categories := make([]string, 0, len(a.Categories))
	for _, c := range a.Categories {
		categories = append(categories, c.Slug)
	}
	tags := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		tags = append(tags, t.Slug)
	}

	return &ArticleDocument{
		ID:         a.ID,
		Title:      a.Title,
		Slug:       a.Slug,
		Excerpt:    a.Excerpt,
		Content:    a.Content,
		AuthorID:   a.AuthorID,
		Categories: categories,
		Tags:       tags,
		Published:  a.Published,
		Featured:   a.Featured,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// ArticleIndexMapping 文章索引映射
const ArticleIndexMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 1,
		"analysis": {
			"analyzer": {
				"text_analyzer": {
					"type": "custom",
					"tokenizer": "standard",
					"char_filter": ["html_strip"],
					"filter": ["lowercase", "asciifolding"]
				}
			}
		}
	},
	"mappings": {
		"properties": {
			"id": { "type": "long" },
			"title": {
				"type": "text",
				"analyzer": "text_analyzer",
				"fields": { "keyword": { "type": "keyword" } }
			},
			"slug": { "type": "keyword" },
			"excerpt": { "type": "text", "analyzer": "text_analyzer" },
			"content": { "type": "text", "analyzer": "text_analyzer" },
			"author_id": { "type": "long" },
			"categories": { "type": "keyword" },
			"tags": { "type": "keyword" },
			"published": { "type": "boolean" },
			"featured": { "type": "boolean" },
			"created_at": { "type": "date" },
			"updated_at": { "type": "date" }
		}
	}
}`

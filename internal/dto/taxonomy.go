package dto

import (
	"time"

	"github.com/nsxzhou1114/blog-platform/internal/model"
)

// CategoryCreateRequest 创建分类请求
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CategoryUpdateRequest 更新分类请求
type CategoryUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// TagCreateRequest 创建标签请求
type TagCreateRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// TagUpdateRequest 更新标签请求
type TagUpdateRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=100"`
}

// TaxonomyGetQuery 分类/标签详情查询
type TaxonomyGetQuery struct {
	IncludeArticles bool `form:"includeArticles"`
}

// TaxonomyCounts 分类/标签关联计数
type TaxonomyCounts struct {
	Articles int64 `json:"articles"`
}

// CategoryItem 分类信息
type CategoryItem struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Count       TaxonomyCounts `json:"_count"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// CategoryDetail 分类详情
type CategoryDetail struct {
	CategoryItem
	Articles []ArticleItem `json:"articles,omitempty"`
}

// NewCategoryItem 由分类模型生成响应
func NewCategoryItem(c *model.Category, articles int64) CategoryItem {
	return CategoryItem{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Count:       TaxonomyCounts{Articles: articles},
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// TagItem 标签信息
type TagItem struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Count     TaxonomyCounts `json:"_count"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// TagDetail 标签详情
type TagDetail struct {
	TagItem
	Articles []ArticleItem `json:"articles,omitempty"`
}

// NewTagItem 由标签模型生成响应
func NewTagItem(t *model.Tag, articles int64) TagItem {
	return TagItem{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Count:     TaxonomyCounts{Articles: articles},
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

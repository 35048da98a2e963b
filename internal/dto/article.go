package dto

import (
	"time"

	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
)

// ArticleCreateRequest 创建文章请求
type ArticleCreateRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=255"`     // 文章标题
	Content     string `json:"content" binding:"required,min=10"`          // 文章内容(Markdown)
	Excerpt     string `json:"excerpt" binding:"max=500"`                  // 摘要，为空时由内容生成
	CoverImage  string `json:"coverImage" binding:"omitempty,url"`         // 封面图片
	Published   bool   `json:"published"`                                  // 是否发布
	Featured    bool   `json:"featured"`                                   // 是否精选，仅管理员可设置
	CategoryIDs []uint `json:"categoryIds" binding:"omitempty,dive,min=1"` // 分类ID列表
	TagIDs      []uint `json:"tagIds" binding:"omitempty,dive,min=1"`      // 标签ID列表
}

// ArticleUpdateRequest 更新文章请求，nil 字段保持不变；
// CategoryIDs/TagIDs 非nil时整体替换（空数组表示清空）
type ArticleUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=3,max=255"`
	Content     *string `json:"content" binding:"omitempty,min=10"`
	Excerpt     *string `json:"excerpt" binding:"omitempty,max=500"`
	CoverImage  *string `json:"coverImage"`
	Published   *bool   `json:"published"`
	Featured    *bool   `json:"featured"`
	CategoryIDs []uint  `json:"categoryIds" binding:"omitempty,dive,min=1"`
	TagIDs      []uint  `json:"tagIds" binding:"omitempty,dive,min=1"`
}

// ArticleQuery 文章列表查询
type ArticleQuery struct {
	PageQuery
	Search    string `form:"search"`    // 标题/内容/摘要关键词
	Category  string `form:"category"`  // 分类slug
	Tag       string `form:"tag"`       // 标签slug
	Published *bool  `form:"published"` // 发布状态
	Featured  *bool  `form:"featured"`  // 是否精选
	AuthorID  uint   `form:"authorId"`  // 作者ID
}

// FeaturedQuery 精选文章查询
type FeaturedQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=20"`
}

// CategoryBrief 分类简要信息
type CategoryBrief struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TagBrief 标签简要信息
type TagBrief struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ArticleCounts 文章关联计数
type ArticleCounts struct {
	Comments int64 `json:"comments"`
	Likes    int64 `json:"likes"`
}

// ArticleItem 文章列表项
type ArticleItem struct {
	ID         uint            `json:"id"`
	Title      string          `json:"title"`
	Slug       string          `json:"slug"`
	Excerpt    string          `json:"excerpt"`
	CoverImage string          `json:"coverImage"`
	Published  bool            `json:"published"`
	Featured   bool            `json:"featured"`
	ViewCount  int64           `json:"viewCount"`
	AuthorID   uint            `json:"authorId"`
	Author     UserBrief       `json:"author"`
	Categories []CategoryBrief `json:"categories"`
	Tags       []TagBrief      `json:"tags"`
	Count      ArticleCounts   `json:"_count"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ArticleDetail 文章详情
type ArticleDetail struct {
	ArticleItem
	Content   string        `json:"content"`
	Comments  []CommentItem `json:"comments"`
	UserLiked bool          `json:"userLiked"` // 当前用户是否已点赞
}

// ArticleListResponse 文章分页列表
type ArticleListResponse struct {
	Articles   []ArticleItem       `json:"articles"`
	Pagination response.Pagination `json:"pagination"`
}

// NewArticleItem 由文章模型生成列表项，需要预加载作者、分类和标签
func NewArticleItem(a *model.Article, counts ArticleCounts) ArticleItem {
	categories := make([]CategoryBrief, 0, len(a.Categories))
	for _, c := range a.Categories {
		categories = append(categories, CategoryBrief{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	tags := make([]TagBrief, 0, len(a.Tags))
	for _, t := range a.Tags {
		tags = append(tags, TagBrief{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}

	return ArticleItem{
		ID:         a.ID,
		Title:      a.Title,
		Slug:       a.Slug,
		Excerpt:    a.Excerpt,
		CoverImage: a.CoverImage,
		Published:  a.Published,
		Featured:   a.Featured,
		ViewCount:  a.ViewCount,
		AuthorID:   a.AuthorID,
		Author:     NewUserBrief(&a.Author),
		Categories: categories,
		Tags:       tags,
		Count:      counts,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

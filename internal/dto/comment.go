package dto

import (
	"time"

	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
)

// CommentCreateRequest 创建评论请求
type CommentCreateRequest struct {
	ArticleID uint   `json:"articleId" binding:"required"`
	Content   string `json:"content" binding:"required,max=1000"`
}

// CommentUpdateRequest 更新评论请求
type CommentUpdateRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// CommentQuery 评论列表查询
type CommentQuery struct {
	PageQuery
	ArticleID uint `form:"articleId"`
}

// CommentItem 评论信息
type CommentItem struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	ArticleID uint      `json:"articleId"`
	AuthorID  uint      `json:"authorId"`
	Author    UserBrief `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentListResponse 评论分页列表
type CommentListResponse struct {
	Comments   []CommentItem       `json:"comments"`
	Pagination response.Pagination `json:"pagination"`
}

// NewCommentItem 由评论模型生成响应，需要预加载作者
func NewCommentItem(c *model.Comment) CommentItem {
	return CommentItem{
		ID:        c.ID,
		Content:   c.Content,
		ArticleID: c.ArticleID,
		AuthorID:  c.AuthorID,
		Author:    NewUserBrief(&c.Author),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewCommentItems 批量转换
func NewCommentItems(comments []model.Comment) []CommentItem {
	items := make([]CommentItem, 0, len(comments))
	for i := range comments {
		items = append(items, NewCommentItem(&comments[i]))
	}
	return items
}

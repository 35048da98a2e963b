package dto

import (
	"time"

	"github.com/nsxzhou1114/blog-platform/internal/model"
)

// LikeCreateRequest 点赞请求
type LikeCreateRequest struct {
	ArticleID uint `json:"articleId" binding:"required"`
}

// LikeQuery 点赞列表查询
type LikeQuery struct {
	ArticleID uint `form:"articleId"`
	UserID    uint `form:"userId"`
}

// LikeItem 点赞信息
type LikeItem struct {
	ID        uint      `json:"id"`
	ArticleID uint      `json:"articleId"`
	UserID    uint      `json:"userId"`
	User      UserBrief `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeListResponse 点赞列表
type LikeListResponse struct {
	Likes []LikeItem `json:"likes"`
	Total int64      `json:"total"`
}

// NewLikeItem 由点赞模型生成响应
func NewLikeItem(l *model.Like) LikeItem {
	return LikeItem{
		ID:        l.ID,
		ArticleID: l.ArticleID,
		UserID:    l.UserID,
		User:      NewUserBrief(&l.User),
		CreatedAt: l.CreatedAt,
	}
}

// ViewRecordRequest 浏览记录请求
type ViewRecordRequest struct {
	ArticleID uint   `json:"articleId" binding:"required"`
	SessionID string `json:"sessionId" binding:"required,max=191"`
}

// ViewRecordedResponse 重复浏览时的响应
type ViewRecordedResponse struct {
	Message string     `json:"message"`
	View    model.View `json:"view"`
}

// ViewStatsQuery 浏览统计查询
type ViewStatsQuery struct {
	ArticleID uint `form:"articleId" binding:"required"`
}

// ViewArticle 浏览统计中的文章信息
type ViewArticle struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	ViewCount int64  `json:"viewCount"` // 文章上的冗余计数
}

// ViewStats 文章浏览统计
type ViewStats struct {
	Article   ViewArticle `json:"article"`
	ViewCount int64       `json:"viewCount"` // 浏览记录行数
}

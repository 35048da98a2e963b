package dto

import "github.com/nsxzhou1114/blog-platform/internal/model"

// 分页默认值
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageQuery 分页查询参数
type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`          // 页码
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"` // 每页条数
}

// Normalize 填充默认值并约束范围
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
}

// Offset 计算偏移量
func (q *PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// UserBrief 用户简要信息
type UserBrief struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// NewUserBrief 由用户模型生成简要信息
func NewUserBrief(u *model.User) UserBrief {
	return UserBrief{ID: u.ID, Name: u.Name, Image: u.Image}
}

// MessageResponse 仅包含提示信息的响应
type MessageResponse struct {
	Message string `json:"message"`
}

package dto

import (
	"time"

	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/pkg/auth"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
)

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=191"`
	Password string `json:"password" binding:"required,min=8,max=72"` // bcrypt 最多处理72字节
}

// LoginRequest 用户登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新令牌请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User   UserItem        `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// UserQuery 用户列表查询（管理员）
type UserQuery struct {
	PageQuery
	Search   string `form:"search"` // 名称或邮箱
	Role     string `form:"role" binding:"omitempty,oneof=USER ADMIN"`
	IsActive *bool  `form:"isActive"`
}

// UserUpdateRequest 更新用户请求，Role/IsActive 仅管理员可修改
type UserUpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=191"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
	Bio      *string `json:"bio" binding:"omitempty,max=1000"`
	Image    *string `json:"image" binding:"omitempty,max=500"`
	Role     *string `json:"role" binding:"omitempty,oneof=USER ADMIN"`
	IsActive *bool   `json:"isActive"`
}

// UserCounts 用户关联计数
type UserCounts struct {
	Articles int64 `json:"articles"`
	Comments int64 `json:"comments"`
	Likes    int64 `json:"likes"`
}

// UserItem 用户信息，不包含密码
type UserItem struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      string      `json:"role"`
	Bio       string      `json:"bio"`
	Image     string      `json:"image"`
	IsActive  bool        `json:"isActive"`
	Count     *UserCounts `json:"_count,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// UserListResponse 用户分页列表
type UserListResponse struct {
	Users      []UserItem          `json:"users"`
	Pagination response.Pagination `json:"pagination"`
}

// NewUserItem 由用户模型生成响应
func NewUserItem(u *model.User) UserItem {
	return UserItem{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Bio:       u.Bio,
		Image:     u.Image,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

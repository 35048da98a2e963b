package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/logger"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/pkg/auth"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"go.uber.org/zap"
)

// 上下文键
const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
	ctxToken    = "token"
)

// bearerToken 从Authorization头中取出令牌
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authenticate 校验访问令牌并写入上下文
func authenticate(c *gin.Context, tokens *auth.Manager, token string) error {
	claims, err := tokens.ParseToken(c.Request.Context(), token, auth.AccessToken)
	if err != nil {
		return err
	}

	// 令牌将在缓冲时间内过期时提示客户端刷新
	if time.Until(time.Unix(claims.ExpiresAt, 0)) < tokens.BufferTime() {
		c.Header("X-Token-Expire-Soon", "true")
	}
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUserRole, claims.Role)
	c.Set(ctxToken, token)
	return nil
}

// requireToken 校验请求中的访问令牌，失败时写入响应并中止请求
func requireToken(c *gin.Context, tokens *auth.Manager) bool {
	if c.GetHeader("Authorization") == "" {
		response.Unauthorized(c, "请先登录")
		return false
	}
	token, ok := bearerToken(c)
	if !ok {
		response.Unauthorized(c, "Authorization格式错误")
		return false
	}

	if err := authenticate(c, tokens, token); err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenRevoked):
			response.Unauthorized(c, "令牌已失效")
		case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrTokenType):
			logger.Warn("无效的令牌", zap.Error(err))
			response.Unauthorized(c, "无效的令牌")
		default:
			response.InternalServerError(c, err)
		}
		return false
	}
	return true
}

// JWTAuth JWT认证中间件
func JWTAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireToken(c, tokens) {
			return
		}
		c.Next()
	}
}

// AccountLookup 查询账号当前的角色和启用状态
type AccountLookup interface {
	CurrentRole(ctx context.Context, id uint) (role string, active bool, err error)
}

// AdminAuth 管理员认证中间件
//
// 令牌中的角色可能已过时，管理员接口以数据库中的角色和状态为准
func AdminAuth(tokens *auth.Manager, accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireToken(c, tokens) {
			return
		}
		if role, _ := GetUserRole(c); role != model.RoleAdmin {
			response.Forbidden(c, "需要管理员权限")
			return
		}

		userID, _ := GetUserID(c)
		role, active, err := accounts.CurrentRole(c.Request.Context(), userID)
		if err != nil {
			response.InternalServerError(c, err)
			return
		}
		if !active || role != model.RoleAdmin {
			response.Forbidden(c, "需要管理员权限")
			return
		}
		c.Next()
	}
}

// OptionalAuth 可选的JWT认证中间件
// 不会阻止未认证的用户访问，但如果提供了有效的token会设置用户信息到上下文
func OptionalAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		if err := authenticate(c, tokens, token); err != nil {
			logger.Debug("忽略无效的令牌", zap.Error(err))
		}
		c.Next()
	}
}

// GetUserID 从上下文中获取用户ID
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserRole 从上下文中获取用户角色
func GetUserRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(ctxUserRole)
	if !exists {
		return "", false
	}
	s, ok := role.(string)
	return s, ok
}

// GetToken 从上下文中获取原始访问令牌
func GetToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}

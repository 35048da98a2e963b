package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nsxzhou1114/blog-platform/internal/config"
)

const ctxSessionID = "sessionID"

// Session 确保请求带有匿名会话cookie，用于浏览量去重
func Session(cfg config.SessionConfig) gin.HandlerFunc {
	name := cfg.CookieName
	if name == "" {
		name = "sessionId"
	}
	return func(c *gin.Context) {
		id, err := c.Cookie(name)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(name, id, cfg.MaxAge, "/", "", cfg.Secure, true)
		}
		c.Set(ctxSessionID, id)
		c.Next()
	}
}

// GetSessionID 获取当前请求的会话ID
func GetSessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

package response

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 统一错误响应结构
type ErrorBody struct {
	Error   string `json:"error"`             // 错误信息
	Details any    `json:"details,omitempty"` // 字段级错误等补充信息
}

// Pagination 分页元数据
type Pagination struct {
	Total int64 `json:"total"` // 总记录数
	Pages int   `json:"pages"` // 总页数
	Page  int   `json:"page"`  // 当前页码
	Limit int   `json:"limit"` // 每页大小
}

// NewPagination 创建分页元数据
func NewPagination(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		Total: total,
		Pages: pages,
		Page:  page,
		Limit: limit,
	}
}

// Success 返回200响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created 返回201响应
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Error 错误响应
func Error(c *gin.Context, code int, message string, details any) {
	body := ErrorBody{Error: message}
	// 避免 map(nil) 被序列化为 "details": null
	if details != nil && !isEmptyMap(details) {
		body.Details = details
	}
	c.AbortWithStatusJSON(code, body)
}

func isEmptyMap(v any) bool {
	switch m := v.(type) {
	case map[string]string:
		return len(m) == 0
	case map[string]any:
		return len(m) == 0
	}
	return false
}

// BadRequest 400错误响应
func BadRequest(c *gin.Context, message string, details any) {
	Error(c, http.StatusBadRequest, message, details)
}

// Unauthorized 401错误响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden 403错误响应
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// NotFound 404错误响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// Conflict 409错误响应
func Conflict(c *gin.Context, message string, details any) {
	Error(c, http.StatusConflict, message, details)
}

// InternalServerError 500错误响应，记录详细错误但不向客户端暴露
func InternalServerError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	Error(c, http.StatusInternalServerError, "服务器内部错误", nil)
}

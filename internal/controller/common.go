package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/middleware"
	"github.com/nsxzhou1114/blog-platform/internal/service"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"github.com/nsxzhou1114/blog-platform/pkg/validate"
	"go.uber.org/zap"
)

// callerFromContext 由认证中间件写入的信息构造调用者，未登录时为零值
func callerFromContext(c *gin.Context) service.Caller {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	return service.Caller{UserID: userID, Role: role}
}

// bindJSON 绑定请求体，失败时直接写入400响应
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

// bindQuery 绑定查询参数，失败时直接写入400响应
func bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

func badRequest(c *gin.Context, err error) {
	if details := validate.Details(err); details != nil {
		response.BadRequest(c, "参数校验失败", details)
		return
	}
	response.BadRequest(c, "请求格式错误", nil)
}

// pathID 解析路径中的数字ID
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "无效的ID", map[string]string{name: "必须是正整数"})
		return 0, false
	}
	return uint(id), true
}

// handleError 业务错误按类别映射状态码，其余错误记录日志后返回500
func handleError(c *gin.Context, logger *zap.SugaredLogger, err error) {
	e, ok := service.AsError(err)
	if !ok {
		logger.Errorw("请求处理失败", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		response.InternalServerError(c, err)
		return
	}

	switch e.Kind {
	case service.KindValidation:
		response.BadRequest(c, e.Message, e.Details)
	case service.KindUnauthenticated:
		response.Unauthorized(c, e.Message)
	case service.KindForbidden:
		response.Forbidden(c, e.Message)
	case service.KindNotFound:
		response.NotFound(c, e.Message)
	case service.KindConflict:
		response.Conflict(c, e.Message, e.Details)
	default:
		response.Error(c, http.StatusInternalServerError, e.Message, nil)
	}
}

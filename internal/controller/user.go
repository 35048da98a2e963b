package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/service"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"go.uber.org/zap"
)

// UserApi 用户控制器
type UserApi struct {
	logger      *zap.SugaredLogger
	userService *service.UserService
}

// NewUserApi 创建用户控制器实例
func NewUserApi(svc *service.Services, logger *zap.SugaredLogger) *UserApi {
	return &UserApi{logger: logger, userService: svc.Users}
}

// List 获取用户列表（管理员）
func (api *UserApi) List(c *gin.Context) {
	var q dto.UserQuery
	if !bindQuery(c, &q) {
		return
	}

	res, err := api.userService.List(c.Request.Context(), callerFromContext(c), q)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, res)
}

// Me 获取当前用户信息
func (api *UserApi) Me(c *gin.Context) {
	user, err := api.userService.Me(c.Request.Context(), callerFromContext(c))
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, user)
}

// Get 获取用户信息
func (api *UserApi) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := api.userService.Get(c.Request.Context(), callerFromContext(c), id)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, user)
}

// Update 更新用户信息
func (api *UserApi) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UserUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := api.userService.Update(c.Request.Context(), callerFromContext(c), id, &req)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, user)
}

// Delete 删除用户（管理员）
func (api *UserApi) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := api.userService.Delete(c.Request.Context(), callerFromContext(c), id); err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, dto.MessageResponse{Message: "用户已删除"})
}

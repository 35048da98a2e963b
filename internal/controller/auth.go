package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/middleware"
	"github.com/nsxzhou1114/blog-platform/internal/service"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"go.uber.org/zap"
)

// AuthApi 注册登录控制器
type AuthApi struct {
	logger      *zap.SugaredLogger
	authService *service.AuthService
}

// NewAuthApi 创建认证控制器实例
func NewAuthApi(svc *service.Services, logger *zap.SugaredLogger) *AuthApi {
	return &AuthApi{logger: logger, authService: svc.Auth}
}

// Register 用户注册
func (api *AuthApi) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := api.authService.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Created(c, user)
}

// Login 用户登录
func (api *AuthApi) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := api.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, res)
}

// Refresh 刷新令牌
func (api *AuthApi) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := api.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, res)
}

// Logout 退出登录，当前访问令牌作废
func (api *AuthApi) Logout(c *gin.Context) {
	if err := api.authService.Logout(c.Request.Context(), middleware.GetToken(c)); err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, dto.MessageResponse{Message: "已退出登录"})
}

package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/service"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"go.uber.org/zap"
)

// InteractionApi 点赞与浏览控制器
type InteractionApi struct {
	logger      *zap.SugaredLogger
	likeService *service.LikeService
	viewService *service.ViewService
}

// NewInteractionApi 创建点赞与浏览控制器实例
func NewInteractionApi(svc *service.Services, logger *zap.SugaredLogger) *InteractionApi {
	return &InteractionApi{
		logger:      logger,
		likeService: svc.Likes,
		viewService: svc.Views,
	}
}

// ListLikes 获取点赞列表
func (api *InteractionApi) ListLikes(c *gin.Context) {
	var q dto.LikeQuery
	if !bindQuery(c, &q) {
		return
	}

	res, err := api.likeService.List(c.Request.Context(), callerFromContext(c), q)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, res)
}

// Like 点赞文章，重复点赞返回409
func (api *InteractionApi) Like(c *gin.Context) {
	var req dto.LikeCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	like, err := api.likeService.Create(c.Request.Context(), callerFromContext(c), req.ArticleID)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Created(c, like)
}

// Unlike 取消点赞
func (api *InteractionApi) Unlike(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := api.likeService.Delete(c.Request.Context(), callerFromContext(c), id); err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, dto.MessageResponse{Message: "已取消点赞"})
}

// RecordView 记录一次浏览，同一会话重复浏览返回200
func (api *InteractionApi) RecordView(c *gin.Context) {
	var req dto.ViewRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	view, created, err := api.viewService.Record(c.Request.Context(), req.ArticleID, req.SessionID)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	if !created {
		response.Success(c, dto.ViewRecordedResponse{Message: "浏览已记录", View: *view})
		return
	}
	response.Created(c, view)
}

// ViewStats 获取文章浏览统计
func (api *InteractionApi) ViewStats(c *gin.Context) {
	var q dto.ViewStatsQuery
	if !bindQuery(c, &q) {
		return
	}

	stats, err := api.viewService.Stats(c.Request.Context(), q.ArticleID)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, stats)
}

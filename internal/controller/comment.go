package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/service"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"go.uber.org/zap"
)

// CommentApi 评论控制器
type CommentApi struct {
	logger         *zap.SugaredLogger
	commentService *service.CommentService
}

// NewCommentApi 创建评论控制器实例
func NewCommentApi(svc *service.Services, logger *zap.SugaredLogger) *CommentApi {
	return &CommentApi{logger: logger, commentService: svc.Comments}
}

// List 获取评论列表，可按文章筛选
func (api *CommentApi) List(c *gin.Context) {
	var q dto.CommentQuery
	if !bindQuery(c, &q) {
		return
	}

	res, err := api.commentService.List(c.Request.Context(), callerFromContext(c), q)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, res)
}

// Get 获取单条评论
func (api *CommentApi) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	comment, err := api.commentService.Get(c.Request.Context(), callerFromContext(c), id)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, comment)
}

// Create 发表评论
func (api *CommentApi) Create(c *gin.Context) {
	var req dto.CommentCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := api.commentService.Create(c.Request.Context(), callerFromContext(c), &req)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Created(c, comment)
}

// Update 修改评论
func (api *CommentApi) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CommentUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := api.commentService.Update(c.Request.Context(), callerFromContext(c), id, &req)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, comment)
}

// Delete 删除评论
func (api *CommentApi) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := api.commentService.Delete(c.Request.Context(), callerFromContext(c), id); err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, dto.MessageResponse{Message: "评论已删除"})
}

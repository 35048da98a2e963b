package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/service"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"go.uber.org/zap"
)

// TagApi 标签控制器
type TagApi struct {
	logger     *zap.SugaredLogger
	tagService *service.TagService
}

// NewTagApi 创建标签控制器实例
func NewTagApi(svc *service.Services, logger *zap.SugaredLogger) *TagApi {
	return &TagApi{logger: logger, tagService: svc.Tags}
}

// List 获取标签列表
func (api *TagApi) List(c *gin.Context) {
	tags, err := api.tagService.List(c.Request.Context())
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, gin.H{"tags": tags})
}

// Get 获取标签详情
func (api *TagApi) Get(c *gin.Context) {
	var q dto.TaxonomyGetQuery
	if !bindQuery(c, &q) {
		return
	}

	tag, err := api.tagService.Get(c.Request.Context(), c.Param("idOrSlug"), q.IncludeArticles)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, tag)
}

// Create 创建标签
func (api *TagApi) Create(c *gin.Context) {
	var req dto.TagCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := api.tagService.Create(c.Request.Context(), callerFromContext(c), &req)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Created(c, tag)
}

// Update 更新标签
func (api *TagApi) Update(c *gin.Context) {
	var req dto.TagUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := api.tagService.Update(c.Request.Context(), callerFromContext(c), c.Param("idOrSlug"), &req)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, tag)
}

// Delete 删除标签
func (api *TagApi) Delete(c *gin.Context) {
	if err := api.tagService.Delete(c.Request.Context(), callerFromContext(c), c.Param("idOrSlug")); err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, dto.MessageResponse{Message: "标签已删除"})
}

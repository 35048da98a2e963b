package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/service"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"go.uber.org/zap"
)

// CategoryApi 分类控制器
type CategoryApi struct {
	logger          *zap.SugaredLogger
	categoryService *service.CategoryService
}

// NewCategoryApi 创建分类控制器实例
func NewCategoryApi(svc *service.Services, logger *zap.SugaredLogger) *CategoryApi {
	return &CategoryApi{logger: logger, categoryService: svc.Categories}
}

// List 获取分类列表
func (api *CategoryApi) List(c *gin.Context) {
	categories, err := api.categoryService.List(c.Request.Context())
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, gin.H{"categories": categories})
}

// Get 获取分类详情
func (api *CategoryApi) Get(c *gin.Context) {
	var q dto.TaxonomyGetQuery
	if !bindQuery(c, &q) {
		return
	}

	category, err := api.categoryService.Get(c.Request.Context(), c.Param("idOrSlug"), q.IncludeArticles)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, category)
}

// Create 创建分类
func (api *CategoryApi) Create(c *gin.Context) {
	var req dto.CategoryCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := api.categoryService.Create(c.Request.Context(), callerFromContext(c), &req)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Created(c, category)
}

// Update 更新分类
func (api *CategoryApi) Update(c *gin.Context) {
	var req dto.CategoryUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := api.categoryService.Update(c.Request.Context(), callerFromContext(c), c.Param("idOrSlug"), &req)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, category)
}

// Delete 删除分类
func (api *CategoryApi) Delete(c *gin.Context) {
	if err := api.categoryService.Delete(c.Request.Context(), callerFromContext(c), c.Param("idOrSlug")); err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, dto.MessageResponse{Message: "分类已删除"})
}

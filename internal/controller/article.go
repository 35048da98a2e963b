package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/middleware"
	"github.com/nsxzhou1114/blog-platform/internal/service"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"go.uber.org/zap"
)

// ArticleApi 文章控制器
type ArticleApi struct {
	logger         *zap.SugaredLogger
	articleService *service.ArticleService
	searchService  *service.SearchService
}

// NewArticleApi 创建文章控制器实例
func NewArticleApi(svc *service.Services, logger *zap.SugaredLogger) *ArticleApi {
	return &ArticleApi{
		logger:         logger,
		articleService: svc.Articles,
		searchService:  svc.Search,
	}
}

// List 获取文章列表
func (api *ArticleApi) List(c *gin.Context) {
	var q dto.ArticleQuery
	if !bindQuery(c, &q) {
		return
	}

	res, err := api.articleService.List(c.Request.Context(), callerFromContext(c), q)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, res)
}

// Create 创建文章
func (api *ArticleApi) Create(c *gin.Context) {
	var req dto.ArticleCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := api.articleService.Create(c.Request.Context(), callerFromContext(c), &req)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Created(c, article)
}

// Get 获取文章详情，非作者访问时计一次浏览
func (api *ArticleApi) Get(c *gin.Context) {
	article, err := api.articleService.Get(c.Request.Context(), callerFromContext(c),
		c.Param("idOrSlug"), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, article)
}

// Update 更新文章
func (api *ArticleApi) Update(c *gin.Context) {
	var req dto.ArticleUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := api.articleService.Update(c.Request.Context(), callerFromContext(c), c.Param("idOrSlug"), &req)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, article)
}

// Delete 删除文章
func (api *ArticleApi) Delete(c *gin.Context) {
	if err := api.articleService.Delete(c.Request.Context(), callerFromContext(c), c.Param("idOrSlug")); err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, dto.MessageResponse{Message: "文章已删除"})
}

// Featured 获取精选文章
func (api *ArticleApi) Featured(c *gin.Context) {
	var q dto.FeaturedQuery
	if !bindQuery(c, &q) {
		return
	}

	articles, err := api.articleService.Featured(c.Request.Context(), q.Limit)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, gin.H{"articles": articles})
}

// Search 全文搜索已发布文章
func (api *ArticleApi) Search(c *gin.Context) {
	var q dto.SearchQuery
	if !bindQuery(c, &q) {
		return
	}

	res, err := api.searchService.Search(c.Request.Context(), q.Q, q.Limit)
	if err != nil {
		handleError(c, api.logger, err)
		return
	}
	response.Success(c, res)
}

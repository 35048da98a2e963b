package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/config"
	"github.com/nsxzhou1114/blog-platform/internal/controller"
	"github.com/nsxzhou1114/blog-platform/internal/middleware"
	"github.com/nsxzhou1114/blog-platform/internal/service"
	"github.com/nsxzhou1114/blog-platform/pkg/auth"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"github.com/nsxzhou1114/blog-platform/pkg/validate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options 路由依赖
type Options struct {
	Config   *config.Config
	DB       *gorm.DB
	Services *service.Services
	Tokens   *auth.Manager
	Logger   *zap.SugaredLogger
}

// Setup 设置全局中间件和API路由
func Setup(r *gin.Engine, opts Options) {
	validate.Register()
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	cfg := opts.Config

	r.Use(cors.New(corsConfig(cfg.App.Cors)))
	r.Use(middleware.Session(cfg.Session))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/healthz", healthz(opts.DB))

	api := r.Group("/api")
	setupAuthRoutes(api, opts)
	setupArticleRoutes(api, opts)
	setupCommentRoutes(api, opts)
	setupInteractionRoutes(api, opts)
	setupCategoryRoutes(api, opts)
	setupTagRoutes(api, opts)
	setupUserRoutes(api, opts)
}

// corsConfig 未配置来源或包含 * 时允许所有来源
func corsConfig(c config.CorsConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:     c.AllowMethods,
		AllowHeaders:     c.AllowHeaders,
		ExposeHeaders:    append([]string{"X-Token-Expire-Soon"}, c.ExposedHeaders...),
		AllowCredentials: c.AllowCredentials,
	}
	allowAll := len(c.AllowOrigins) == 0
	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cc.AllowAllOrigins = true
		// 通配来源不能携带凭证
		cc.AllowCredentials = false
	} else {
		cc.AllowOrigins = c.AllowOrigins
	}
	if len(cc.AllowMethods) == 0 {
		cc.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	}
	if len(cc.AllowHeaders) == 0 {
		cc.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	}
	return cc
}

// healthz 检查数据库连接
func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "数据库不可用", nil)
			return
		}
		response.Success(c, gin.H{"status": "ok"})
	}
}

// setupAuthRoutes 设置注册登录路由
func setupAuthRoutes(api *gin.RouterGroup, opts Options) {
	authApi := controller.NewAuthApi(opts.Services, opts.Logger.Named("auth"))

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authApi.Register)
		authRoutes.POST("/login", authApi.Login)
		// 刷新令牌放在请求体中
		authRoutes.POST("/refresh", authApi.Refresh)
		authRoutes.POST("/logout", middleware.JWTAuth(opts.Tokens), authApi.Logout)
	}
}

// setupArticleRoutes 设置文章相关路由
func setupArticleRoutes(api *gin.RouterGroup, opts Options) {
	articleApi := controller.NewArticleApi(opts.Services, opts.Logger.Named("article"))

	articleRoutes := api.Group("/articles")
	{
		articleRoutes.GET("/search", articleApi.Search)
		articleRoutes.GET("/featured", articleApi.Featured)
		articleRoutes.GET("", middleware.OptionalAuth(opts.Tokens), articleApi.List)
		articleRoutes.GET("/:idOrSlug", middleware.OptionalAuth(opts.Tokens), articleApi.Get)
	}

	authArticleRoutes := api.Group("/articles", middleware.JWTAuth(opts.Tokens))
	{
		authArticleRoutes.POST("", articleApi.Create)
		authArticleRoutes.PATCH("/:idOrSlug", articleApi.Update)
		authArticleRoutes.DELETE("/:idOrSlug", articleApi.Delete)
	}
}

// setupCommentRoutes 设置评论相关路由
func setupCommentRoutes(api *gin.RouterGroup, opts Options) {
	commentApi := controller.NewCommentApi(opts.Services, opts.Logger.Named("comment"))

	commentRoutes := api.Group("/comments", middleware.OptionalAuth(opts.Tokens))
	{
		commentRoutes.GET("", commentApi.List)
		commentRoutes.GET("/:id", commentApi.Get)
	}

	authCommentRoutes := api.Group("/comments", middleware.JWTAuth(opts.Tokens))
	{
		authCommentRoutes.POST("", commentApi.Create)
		authCommentRoutes.PATCH("/:id", commentApi.Update)
		authCommentRoutes.DELETE("/:id", commentApi.Delete)
	}
}

// setupInteractionRoutes 设置点赞和浏览路由
func setupInteractionRoutes(api *gin.RouterGroup, opts Options) {
	interactionApi := controller.NewInteractionApi(opts.Services, opts.Logger.Named("interaction"))

	api.GET("/likes", middleware.OptionalAuth(opts.Tokens), interactionApi.ListLikes)
	likeRoutes := api.Group("/likes", middleware.JWTAuth(opts.Tokens))
	{
		likeRoutes.POST("", interactionApi.Like)
		likeRoutes.DELETE("/:id", interactionApi.Unlike)
	}

	viewRoutes := api.Group("/views")
	{
		viewRoutes.GET("", interactionApi.ViewStats)
		viewRoutes.POST("", interactionApi.RecordView)
	}
}

// setupCategoryRoutes 设置分类相关路由
func setupCategoryRoutes(api *gin.RouterGroup, opts Options) {
	categoryApi := controller.NewCategoryApi(opts.Services, opts.Logger.Named("category"))

	categoryRoutes := api.Group("/categories")
	{
		categoryRoutes.GET("", categoryApi.List)
		categoryRoutes.GET("/:idOrSlug", categoryApi.Get)
	}

	adminCategoryRoutes := api.Group("/categories", middleware.AdminAuth(opts.Tokens, opts.Services.Users))
	{
		adminCategoryRoutes.POST("", categoryApi.Create)
		adminCategoryRoutes.PATCH("/:idOrSlug", categoryApi.Update)
		adminCategoryRoutes.DELETE("/:idOrSlug", categoryApi.Delete)
	}
}

// setupTagRoutes 设置标签相关路由
func setupTagRoutes(api *gin.RouterGroup, opts Options) {
	tagApi := controller.NewTagApi(opts.Services, opts.Logger.Named("tag"))

	tagRoutes := api.Group("/tags")
	{
		tagRoutes.GET("", tagApi.List)
		tagRoutes.GET("/:idOrSlug", tagApi.Get)
	}

	adminTagRoutes := api.Group("/tags", middleware.AdminAuth(opts.Tokens, opts.Services.Users))
	{
		adminTagRoutes.POST("", tagApi.Create)
		adminTagRoutes.PATCH("/:idOrSlug", tagApi.Update)
		adminTagRoutes.DELETE("/:idOrSlug", tagApi.Delete)
	}
}

// setupUserRoutes 设置用户相关路由
func setupUserRoutes(api *gin.RouterGroup, opts Options) {
	userApi := controller.NewUserApi(opts.Services, opts.Logger.Named("user"))

	userRoutes := api.Group("/users", middleware.JWTAuth(opts.Tokens))
	{
		userRoutes.GET("/me", userApi.Me)
		userRoutes.GET("/:id", userApi.Get)
		userRoutes.PATCH("/:id", userApi.Update)
	}

	adminUserRoutes := api.Group("/users", middleware.AdminAuth(opts.Tokens, opts.Services.Users))
	{
		adminUserRoutes.GET("", userApi.List)
		adminUserRoutes.DELETE("/:id", userApi.Delete)
	}
}

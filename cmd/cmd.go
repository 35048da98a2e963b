package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/blog-platform/internal/config"
	"github.com/nsxzhou1114/blog-platform/internal/database"
	"github.com/nsxzhou1114/blog-platform/internal/job"
	"github.com/nsxzhou1114/blog-platform/internal/logger"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/internal/router"
	"github.com/nsxzhou1114/blog-platform/internal/service"
	"github.com/nsxzhou1114/blog-platform/pkg/auth"
	"github.com/nsxzhou1114/blog-platform/pkg/cache"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "blog-platform",
	Short: "博客平台服务",
	Long:  `博客平台REST服务，支持文章、评论、点赞、浏览统计、分类标签和用户管理`,
}

// serveCmd 启动服务命令
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP服务",
	Long:  `迁移数据库表并启动博客平台的HTTP服务器和定时任务`,
	Run: func(cmd *cobra.Command, args []string) {
		startServer()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config", "配置文件所在目录")

	rootCmd.AddCommand(serveCmd)
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// initializeSystem 初始化配置、日志和数据库连接
func initializeSystem() error {
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("配置初始化失败: %w", err)
	}

	if err := logger.Init(); err != nil {
		return fmt.Errorf("日志初始化失败: %w", err)
	}

	if database.GetDB() == nil {
		return errors.New("数据库连接失败")
	}
	return nil
}

// app 命令运行所需的全部依赖
type app struct {
	cfg      *config.Config
	services *service.Services
	tokens   *auth.Manager
}

// newApp 按配置组装服务，Redis 和 Elasticsearch 未启用时分别退化为内存黑名单和数据库搜索
func newApp() (*app, error) {
	if err := initializeSystem(); err != nil {
		return nil, err
	}
	cfg := config.GetConfig()

	var (
		store     cache.Cache
		blacklist auth.Blacklist = auth.NewMemoryBlacklist()
	)
	if rdb := database.GetRedis(); rdb != nil {
		store = cache.NewRedisCache(rdb)
		blacklist = auth.NewRedisBlacklist(rdb)
	}
	tokens := auth.NewManager(cfg.JWT, blacklist)

	services, err := service.New(service.Options{
		DB:         database.GetDB(),
		Cache:      store,
		ES:         database.GetES(),
		ESIndex:    cfg.Elasticsearch.Index,
		Tokens:     tokens,
		Moderation: cfg.Moderation,
		Logger:     logger.GetSugaredLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("服务初始化失败: %w", err)
	}

	return &app{cfg: cfg, services: services, tokens: tokens}, nil
}

// startServer 启动HTTP服务
func startServer() {
	a, err := newApp()
	if err != nil {
		fmt.Printf("系统初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := model.InitTables(database.GetDB()); err != nil {
		logger.Fatal("初始化数据库表失败", zap.Error(err))
	}
	if err := a.services.Search.EnsureIndex(context.Background()); err != nil {
		// 索引创建失败不影响启动，写入时会再次尝试
		logger.Warn("初始化搜索索引失败", zap.Error(err))
	}

	scheduler, err := job.NewScheduler(a.cfg.Cron, a.services.Views, logger.GetSugaredLogger().Named("cron"))
	if err != nil {
		logger.Fatal("定时任务初始化失败", zap.Error(err))
	}
	scheduler.Start()

	gin.SetMode(a.cfg.App.Mode)
	r := initRouter(a)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.App.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP服务启动失败", zap.Error(err))
		}
	}()

	logger.Info("服务已启动", zap.String("addr", srv.Addr))

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := scheduler.Stop(ctx); err != nil {
		logger.Warn("定时任务未能按时结束", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("服务关闭异常", zap.Error(err))
	}

	logger.Info("服务已关闭")
}

// 初始化路由
func initRouter(a *app) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(logger.GinLogger())

	router.Setup(r, router.Options{
		Config:   a.cfg,
		DB:       database.GetDB(),
		Services: a.services,
		Tokens:   a.tokens,
		Logger:   logger.GetSugaredLogger(),
	})

	return r
}

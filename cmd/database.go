package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nsxzhou1114/blog-platform/internal/database"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/spf13/cobra"
)

// migrateCmd 数据库迁移命令
// 示例：./blog-platform migrate -c ./config
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "迁移数据库表",
	Long:  `按模型自动迁移数据库表结构，serve 启动时也会执行`,
	Run: func(cmd *cobra.Command, args []string) {
		migrateTables()
	},
}

// viewsCmd 浏览量管理命令
var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "浏览量管理命令",
}

// reconcileViewsCmd 浏览量校准命令
// 示例：./blog-platform views reconcile
var reconcileViewsCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "校准文章浏览量",
	Long:  `将每篇文章的浏览量修正为浏览记录的实际条数`,
	Run: func(cmd *cobra.Command, args []string) {
		reconcileViews()
	},
}

// searchCmd 搜索索引管理命令
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "搜索索引管理命令",
}

// reindexCmd 重建搜索索引命令
// 示例：./blog-platform search reindex
var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "重建搜索索引",
	Long:  `将数据库中的全部文章写入Elasticsearch索引`,
	Run: func(cmd *cobra.Command, args []string) {
		reindexArticles()
	},
}

func init() {
	viewsCmd.AddCommand(reconcileViewsCmd)
	searchCmd.AddCommand(reindexCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(viewsCmd)
	rootCmd.AddCommand(searchCmd)
}

// migrateTables 迁移数据库表
func migrateTables() {
	if err := initializeSystem(); err != nil {
		fmt.Printf("系统初始化失败: %v\n", err)
		os.Exit(1)
	}

	if err := model.InitTables(database.GetDB()); err != nil {
		fmt.Printf("迁移失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("数据库表迁移完成")
}

// reconcileViews 校准浏览量
func reconcileViews() {
	a := mustApp()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := a.services.Views.ReconcileCounts(ctx)
	if err != nil {
		fmt.Printf("校准失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("已校准 %d 篇文章的浏览量\n", n)
}

// reindexArticles 重建索引
func reindexArticles() {
	a := mustApp()
	if !a.services.Search.Enabled() {
		fmt.Println("Elasticsearch未启用或不可用，跳过")
		return
	}

	start := time.Now()
	n, err := a.services.Search.Reindex(context.Background())
	if err != nil {
		fmt.Printf("重建索引失败（已写入 %d 篇）: %v\n", n, err)
		os.Exit(1)
	}
	fmt.Printf("成功索引 %d 篇文章，耗时 %s\n", n, time.Since(start).Round(time.Millisecond))
}

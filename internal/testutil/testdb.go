package testutil

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nsxzhou1114/blog-platform/internal/database"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/pkg/slug"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var nonWord = regexp.MustCompile(`[^A-Za-z0-9]+`)

// NewDB 创建以测试名命名的内存SQLite数据库并完成迁移
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", nonWord.ReplaceAllString(t.Name(), "_"))
	db, err := gorm.Open(sqlite.Open(dsn), database.NewGormConfig("silent"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库只在连接存活期间存在，单连接保证所有查询看到同一份数据
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.InitTables(db))
	return db
}

// NewRedis 启动miniredis并返回客户端
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// CreateUser 创建用户，密码字段为占位值
func CreateUser(t *testing.T, db *gorm.DB, name, role string) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    slug.Make(name) + "@example.com",
		Password: "not-a-hash",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// ArticleOption 修改测试文章
type ArticleOption func(*model.Article)

// Published 设置为已发布
func Published(a *model.Article) { a.Published = true }

// Featured 设置为精选
func Featured(a *model.Article) { a.Featured = true }

// WithCategories 关联分类
func WithCategories(categories ...model.Category) ArticleOption {
	return func(a *model.Article) { a.Categories = categories }
}

// WithTags 关联标签
func WithTags(tags ...model.Tag) ArticleOption {
	return func(a *model.Article) { a.Tags = tags }
}

// CreateArticle 创建文章，slug由标题生成
func CreateArticle(t *testing.T, db *gorm.DB, authorID uint, title string, opts ...ArticleOption) *model.Article {
	t.Helper()
	article := &model.Article{
		Title:    title,
		Slug:     slug.Make(title),
		Content:  "Content of " + title,
		Excerpt:  "Excerpt of " + title,
		AuthorID: authorID,
	}
	for _, opt := range opts {
		opt(article)
	}
	require.NoError(t, db.Omit("Categories.*", "Tags.*").Create(article).Error)
	return article
}

// CreateCategory 创建分类
func CreateCategory(t *testing.T, db *gorm.DB, name string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Slug: slug.Make(name)}
	require.NoError(t, db.Create(category).Error)
	return category
}

// CreateTag 创建标签
func CreateTag(t *testing.T, db *gorm.DB, name string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Name: name, Slug: slug.Make(name)}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateComment 创建评论
func CreateComment(t *testing.T, db *gorm.DB, articleID, authorID uint, content string) *model.Comment {
	t.Helper()
	comment := &model.Comment{ArticleID: articleID, AuthorID: authorID, Content: content}
	require.NoError(t, db.Create(comment).Error)
	return comment
}

// CreateLike 创建点赞
func CreateLike(t *testing.T, db *gorm.DB, articleID, userID uint) *model.Like {
	t.Helper()
	like := &model.Like{ArticleID: articleID, UserID: userID}
	require.NoError(t, db.Create(like).Error)
	return like
}

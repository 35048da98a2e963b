package service

import (
	"context"
	"fmt"

	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/metrics"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// LikeService 点赞服务
type LikeService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewLikeService 创建点赞服务实例
func NewLikeService(db *gorm.DB, logger *zap.SugaredLogger) *LikeService {
	return &LikeService{db: db, logger: logger}
}

// List 查询调用者可见文章上的点赞
func (s *LikeService) List(ctx context.Context, caller Caller, q dto.LikeQuery) (*dto.LikeListResponse, error) {
	build := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&model.Like{}).
			Joins("JOIN articles ON articles.id = likes.article_id")
		db = visibleArticles(db, caller)
		if q.ArticleID != 0 {
			db = db.Where("likes.article_id = ?", q.ArticleID)
		}
		if q.UserID != 0 {
			db = db.Where("likes.user_id = ?", q.UserID)
		}
		return db
	}

	var (
		total int64
		likes []model.Like
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return build().WithContext(gctx).Count(&total).Error
	})
	g.Go(func() error {
		return build().WithContext(gctx).
			Select("likes.*").
			Preload("User").
			Order("likes.created_at DESC").
			Order("likes.id DESC").
			Find(&likes).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("查询点赞失败: %w", err)
	}

	items := make([]dto.LikeItem, 0, len(likes))
	for i := range likes {
		items = append(items, dto.NewLikeItem(&likes[i]))
	}
	return &dto.LikeListResponse{Likes: items, Total: total}, nil
}

// visibleArticles 过滤出调用者可见的文章，需已连接 articles 表
func visibleArticles(db *gorm.DB, caller Caller) *gorm.DB {
	switch {
	case caller.IsAdmin():
		return db
	case caller.Authenticated():
		return db.Where("(articles.published = ? OR articles.author_id = ?)", true, caller.UserID)
	default:
		return db.Where("articles.published = ?", true)
	}
}

// Create 点赞，每个用户对每篇文章只能点赞一次
func (s *LikeService) Create(ctx context.Context, caller Caller, articleID uint) (*dto.LikeItem, error) {
	if !caller.Authenticated() {
		return nil, errLoginRequired
	}

	article, err := findArticle(ctx, s.db, articleID)
	if err != nil {
		return nil, err
	}
	if !article.VisibleTo(caller.UserID, caller.Role) {
		return nil, Forbidden("无权访问该文章")
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("article_id = ? AND user_id = ?", articleID, caller.UserID).
		Count(&n).Error; err != nil {
		return nil, fmt.Errorf("查询点赞失败: %w", err)
	}
	if n > 0 {
		return nil, Conflict("已经点赞过该文章", nil)
	}

	like := &model.Like{ArticleID: articleID, UserID: caller.UserID}
	if err := s.db.WithContext(ctx).Create(like).Error; err != nil {
		// 并发重复点赞由唯一索引拦截
		if isDuplicateKey(err) {
			return nil, Conflict("已经点赞过该文章", nil)
		}
		return nil, fmt.Errorf("点赞失败: %w", err)
	}
	metrics.LikesCreated.Inc()

	if err := s.db.WithContext(ctx).Preload("User").First(like, like.ID).Error; err != nil {
		return nil, fmt.Errorf("查询点赞失败: %w", err)
	}
	item := dto.NewLikeItem(like)
	return &item, nil
}

// Delete 取消点赞，仅点赞者本人或管理员可操作
func (s *LikeService) Delete(ctx context.Context, caller Caller, likeID uint) error {
	if !caller.Authenticated() {
		return errLoginRequired
	}

	var like model.Like
	if err := s.db.WithContext(ctx).First(&like, likeID).Error; err != nil {
		if isNotFound(err) {
			return NotFound("点赞不存在")
		}
		return fmt.Errorf("查询点赞失败: %w", err)
	}
	if !caller.CanManage(like.UserID) {
		return Forbidden("只能取消自己的点赞")
	}

	if err := s.db.WithContext(ctx).Delete(&like).Error; err != nil {
		return fmt.Errorf("取消点赞失败: %w", err)
	}
	return nil
}

// findArticle 按ID查询文章，只取可见性判断需要的字段
func findArticle(ctx context.Context, db *gorm.DB, articleID uint) (*model.Article, error) {
	var article model.Article
	err := db.WithContext(ctx).Select("id", "published", "author_id").First(&article, articleID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, NotFound("文章不存在")
		}
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	return &article, nil
}

package service

import (
	"context"
	"fmt"

	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/metrics"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ViewService 文章浏览记录服务
type ViewService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewViewService 创建浏览记录服务实例
func NewViewService(db *gorm.DB, logger *zap.SugaredLogger) *ViewService {
	return &ViewService{db: db, logger: logger}
}

// Record 记录一次浏览，同一会话对同一文章只计数一次。
// created 为 false 表示该会话已浏览过，返回已有记录。
func (s *ViewService) Record(ctx context.Context, articleID uint, sessionID string) (*model.View, bool, error) {
	if sessionID == "" {
		return nil, false, Invalid("参数校验失败", map[string]any{"sessionId": "不能为空"})
	}

	// 文章不存在时不做任何写入
	var article model.Article
	if err := s.db.WithContext(ctx).Select("id").First(&article, articleID).Error; err != nil {
		if isNotFound(err) {
			return nil, false, NotFound("文章不存在")
		}
		return nil, false, fmt.Errorf("查询文章失败: %w", err)
	}

	existing, err := s.find(ctx, articleID, sessionID)
	if err == nil {
		return existing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, fmt.Errorf("查询浏览记录失败: %w", err)
	}

	view, err := s.insertView(ctx, articleID, sessionID)
	if err != nil {
		// 并发请求由唯一索引拦下，视为已记录
		if isDuplicateKey(err) {
			existing, ferr := s.find(ctx, articleID, sessionID)
			if ferr != nil {
				return nil, false, fmt.Errorf("查询浏览记录失败: %w", ferr)
			}
			return existing, false, nil
		}
		if isNotFound(err) {
			return nil, false, NotFound("文章不存在")
		}
		return nil, false, fmt.Errorf("记录浏览失败: %w", err)
	}

	metrics.ViewsRecorded.Inc()
	return view, true, nil
}

// insertView 在同一事务中写入浏览记录并递增文章浏览量
func (s *ViewService) insertView(ctx context.Context, articleID uint, sessionID string) (*model.View, error) {
	view := &model.View{ArticleID: articleID, SessionID: sessionID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(view).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Article{}).
			Where("id = ?", articleID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *ViewService) find(ctx context.Context, articleID uint, sessionID string) (*model.View, error) {
	var view model.View
	err := s.db.WithContext(ctx).
		Where("article_id = ? AND session_id = ?", articleID, sessionID).
		First(&view).Error
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Stats 获取文章浏览统计
func (s *ViewService) Stats(ctx context.Context, articleID uint) (*dto.ViewStats, error) {
	var article model.Article
	if err := s.db.WithContext(ctx).Select("id", "title", "view_count").First(&article, articleID).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("文章不存在")
		}
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.View{}).Where("article_id = ?", articleID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("统计浏览记录失败: %w", err)
	}

	return &dto.ViewStats{
		Article: dto.ViewArticle{
			ID:        article.ID,
			Title:     article.Title,
			ViewCount: article.ViewCount,
		},
		ViewCount: count,
	}, nil
}

// ReconcileCounts 将文章浏览量校准为浏览记录行数，返回被修正的文章数
func (s *ViewService) ReconcileCounts(ctx context.Context) (int64, error) {
	const countViews = "(SELECT COUNT(*) FROM views WHERE views.article_id = articles.id)"
	res := s.db.WithContext(ctx).Exec(
		"UPDATE articles SET view_count = " + countViews + " WHERE view_count <> " + countViews,
	)
	if res.Error != nil {
		return 0, fmt.Errorf("校准浏览量失败: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		metrics.ViewsReconciled.Add(float64(res.RowsAffected))
		s.logger.Infof("已校准 %d 篇文章的浏览量", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// CommentService 评论服务
type CommentService struct {
	db        *gorm.DB
	moderator *Moderator
	logger    *zap.SugaredLogger
}

// NewCommentService 创建评论服务实例
func NewCommentService(db *gorm.DB, moderator *Moderator, logger *zap.SugaredLogger) *CommentService {
	return &CommentService{db: db, moderator: moderator, logger: logger}
}

// List 分页查询评论，指定文章时需要文章对调用者可见
func (s *CommentService) List(ctx context.Context, caller Caller, q dto.CommentQuery) (*dto.CommentListResponse, error) {
	q.Normalize()

	if q.ArticleID != 0 {
		article, err := findArticle(ctx, s.db, q.ArticleID)
		if err != nil {
			return nil, err
		}
		if !article.VisibleTo(caller.UserID, caller.Role) {
			return nil, Forbidden("无权查看该文章")
		}
	}

	build := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&model.Comment{})
		switch {
		case q.ArticleID != 0:
			db = db.Where("comments.article_id = ?", q.ArticleID)
		case !caller.IsAdmin():
			db = db.Joins("JOIN articles ON articles.id = comments.article_id").
				Where("articles.published = ?", true)
		}
		return db
	}

	var (
		total    int64
		comments []model.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return build().WithContext(gctx).Count(&total).Error
	})
	g.Go(func() error {
		return build().WithContext(gctx).
			Select("comments.*").
			Preload("Author").
			Order("comments.created_at DESC").
			Order("comments.id DESC").
			Offset(q.Offset()).
			Limit(q.Limit).
			Find(&comments).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}

	return &dto.CommentListResponse{
		Comments:   dto.NewCommentItems(comments),
		Pagination: response.NewPagination(total, q.Page, q.Limit),
	}, nil
}

// Get 获取单条评论
func (s *CommentService) Get(ctx context.Context, caller Caller, id uint) (*dto.CommentItem, error) {
	comment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	article, err := findArticle(ctx, s.db, comment.ArticleID)
	if err != nil {
		return nil, err
	}
	if !article.VisibleTo(caller.UserID, caller.Role) {
		return nil, Forbidden("无权查看该评论")
	}

	item := dto.NewCommentItem(comment)
	return &item, nil
}

// Create 发表评论
func (s *CommentService) Create(ctx context.Context, caller Caller, req *dto.CommentCreateRequest) (*dto.CommentItem, error) {
	if !caller.Authenticated() {
		return nil, errLoginRequired
	}

	content, err := s.clean(req.Content)
	if err != nil {
		return nil, err
	}

	article, err := findArticle(ctx, s.db, req.ArticleID)
	if err != nil {
		return nil, err
	}
	if !article.VisibleTo(caller.UserID, caller.Role) {
		return nil, Forbidden("无权评论该文章")
	}

	comment := &model.Comment{
		Content:   content,
		ArticleID: req.ArticleID,
		AuthorID:  caller.UserID,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("创建评论失败: %w", err)
	}

	created, err := s.find(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	item := dto.NewCommentItem(created)
	return &item, nil
}

// Update 修改评论，仅作者本人或管理员可操作
func (s *CommentService) Update(ctx context.Context, caller Caller, id uint, req *dto.CommentUpdateRequest) (*dto.CommentItem, error) {
	if !caller.Authenticated() {
		return nil, errLoginRequired
	}

	comment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanManage(comment.AuthorID) {
		return nil, Forbidden("只能修改自己的评论")
	}

	content, err := s.clean(req.Content)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", comment.ID).
		Update("content", content).Error; err != nil {
		return nil, fmt.Errorf("更新评论失败: %w", err)
	}

	updated, err := s.find(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	item := dto.NewCommentItem(updated)
	return &item, nil
}

// Delete 删除评论，仅作者本人或管理员可操作
func (s *CommentService) Delete(ctx context.Context, caller Caller, id uint) error {
	if !caller.Authenticated() {
		return errLoginRequired
	}

	comment, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !caller.CanManage(comment.AuthorID) {
		return Forbidden("只能删除自己的评论")
	}

	if err := s.db.WithContext(ctx).Delete(&model.Comment{}, comment.ID).Error; err != nil {
		return fmt.Errorf("删除评论失败: %w", err)
	}
	return nil
}

func (s *CommentService) find(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := s.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("评论不存在")
		}
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	return &comment, nil
}

// clean 审核评论内容，清理后为空视为参数错误
func (s *CommentService) clean(content string) (string, error) {
	// 长度按用户提交的文本计算
	if n := len([]rune(strings.TrimSpace(content))); n > maxCommentLength {
		return "", Invalid("参数校验失败", map[string]any{"content": fmt.Sprintf("长度不能超过%d个字符", maxCommentLength)})
	}
	cleaned := s.moderator.Clean(content)
	if cleaned == "" {
		return "", Invalid("参数校验失败", map[string]any{"content": "评论内容不能为空"})
	}
	return cleaned, nil
}

// 评论最大长度
const maxCommentLength = 1000

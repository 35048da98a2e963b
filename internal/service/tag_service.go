package service

import (
	"context"
	"fmt"

	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/pkg/cache"
	"github.com/nsxzhou1114/blog-platform/pkg/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TagService 标签服务
type TagService struct {
	db       *gorm.DB
	cache    cache.Cache
	articles *ArticleService
	logger   *zap.SugaredLogger
}

// NewTagService 创建标签服务实例，cache 可以为nil
func NewTagService(db *gorm.DB, c cache.Cache, articles *ArticleService, logger *zap.SugaredLogger) *TagService {
	return &TagService{
		db:       db,
		cache:    c,
		articles: articles,
		logger:   logger,
	}
}

// List 获取全部标签，按名称排序
func (s *TagService) List(ctx context.Context) ([]dto.TagItem, error) {
	if s.cache != nil {
		var items []dto.TagItem
		err := s.cache.GetJSON(ctx, cache.TagListKey, &items)
		if err == nil {
			return items, nil
		}
		if !cache.IsMiss(err) {
			s.logger.Warnf("读取标签缓存失败: %v", err)
		}
	}

	var tags []model.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("查询标签失败: %w", err)
	}

	ids := make([]uint, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	counts, err := countBy(s.db.WithContext(ctx), "article_tags", "tag_id", ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TagItem, 0, len(tags))
	for i := range tags {
		items = append(items, dto.NewTagItem(&tags[i], counts[tags[i].ID]))
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.TagListKey, items, cache.TagListExpiration); err != nil {
			s.logger.Warnf("写入标签缓存失败: %v", err)
		}
	}
	return items, nil
}

// Get 获取标签详情，includeArticles 时附带该标签下的已发布文章
func (s *TagService) Get(ctx context.Context, idOrSlug string, includeArticles bool) (*dto.TagDetail, error) {
	tag, err := s.find(s.db.WithContext(ctx), idOrSlug)
	if err != nil {
		return nil, err
	}

	counts, err := countBy(s.db.WithContext(ctx), "article_tags", "tag_id", []uint{tag.ID})
	if err != nil {
		return nil, err
	}
	detail := &dto.TagDetail{TagItem: dto.NewTagItem(tag, counts[tag.ID])}

	if includeArticles {
		list, err := s.articles.List(ctx, Caller{}, dto.ArticleQuery{
			PageQuery: dto.PageQuery{Page: 1, Limit: dto.MaxLimit},
			Tag:       tag.Slug,
		})
		if err != nil {
			return nil, err
		}
		detail.Articles = list.Articles
	}
	return detail, nil
}

// Create 创建标签（管理员）
func (s *TagService) Create(ctx context.Context, caller Caller, req *dto.TagCreateRequest) (*dto.TagItem, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}

	name, err := trimmed(req.Name, "name", minNameLength)
	if err != nil {
		return nil, err
	}
	tagSlug := slug.Make(name)
	if tagSlug == "" {
		return nil, Invalid("参数校验失败", map[string]any{"name": "名称必须包含字母或数字"})
	}

	tag := &model.Tag{
		Name: name,
		Slug: tagSlug,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, &model.Tag{}, name, tagSlug, 0, "标签已存在"); err != nil {
			return err
		}
		if err := tx.Create(tag).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("标签已存在", map[string]any{"name": name, "slug": tagSlug})
			}
			return fmt.Errorf("创建标签失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	item := dto.NewTagItem(tag, 0)
	return &item, nil
}

// Update 更新标签（管理员），改名时重新生成slug
func (s *TagService) Update(ctx context.Context, caller Caller, idOrSlug string, req *dto.TagUpdateRequest) (*dto.TagItem, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}

	var tagID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tag, err := s.find(tx, idOrSlug)
		if err != nil {
			return err
		}
		tagID = tag.ID

		updates := make(map[string]interface{})
		if req.Name != nil {
			name, err := trimmed(*req.Name, "name", minNameLength)
			if err != nil {
				return err
			}
			if name != tag.Name {
				newSlug := slug.Make(name)
				if newSlug == "" {
					return Invalid("参数校验失败", map[string]any{"name": "名称必须包含字母或数字"})
				}
				if err := ensureNameFree(tx, &model.Tag{}, name, newSlug, tag.ID, "标签已存在"); err != nil {
					return err
				}
				updates["name"] = name
				updates["slug"] = newSlug
			}
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&model.Tag{}).Where("id = ?", tag.ID).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("标签已存在", nil)
			}
			return fmt.Errorf("更新标签失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	detail, err := s.Get(ctx, fmt.Sprint(tagID), false)
	if err != nil {
		return nil, err
	}
	return &detail.TagItem, nil
}

// Delete 删除标签（管理员），仍被文章使用时拒绝删除
func (s *TagService) Delete(ctx context.Context, caller Caller, idOrSlug string) error {
	if err := caller.requireAdmin(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tag, err := s.find(tx, idOrSlug)
		if err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&model.ArticleTag{}).Where("tag_id = ?", tag.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("统计标签文章失败: %w", err)
		}
		if n > 0 {
			return Conflict(
				fmt.Sprintf("该标签仍被 %d 篇文章使用，无法删除", n),
				map[string]any{"articleCount": n},
			)
		}

		if err := tx.Delete(&model.Tag{}, tag.ID).Error; err != nil {
			return fmt.Errorf("删除标签失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *TagService) find(db *gorm.DB, idOrSlug string) (*model.Tag, error) {
	var tag model.Tag
	if err := findByIDOrSlug(db, &tag, idOrSlug); err != nil {
		if isNotFound(err) {
			return nil, NotFound("标签不存在")
		}
		return nil, fmt.Errorf("查询标签失败: %w", err)
	}
	return &tag, nil
}

func (s *TagService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.TagListKey); err != nil {
		s.logger.Warnf("清理标签缓存失败: %v", err)
	}
}

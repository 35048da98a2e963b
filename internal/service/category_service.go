package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/pkg/cache"
	"github.com/nsxzhou1114/blog-platform/pkg/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CategoryService 分类服务
type CategoryService struct {
	db       *gorm.DB
	cache    cache.Cache
	articles *ArticleService
	logger   *zap.SugaredLogger
}

// NewCategoryService 创建分类服务实例，cache 可以为nil
func NewCategoryService(db *gorm.DB, c cache.Cache, articles *ArticleService, logger *zap.SugaredLogger) *CategoryService {
	return &CategoryService{
		db:       db,
		cache:    c,
		articles: articles,
		logger:   logger,
	}
}

// List 获取全部分类，按名称排序
func (s *CategoryService) List(ctx context.Context) ([]dto.CategoryItem, error) {
	if s.cache != nil {
		var items []dto.CategoryItem
		err := s.cache.GetJSON(ctx, cache.CategoryListKey, &items)
		if err == nil {
			return items, nil
		}
		if !cache.IsMiss(err) {
			s.logger.Warnf("读取分类缓存失败: %v", err)
		}
	}

	var categories []model.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}

	ids := make([]uint, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	counts, err := countBy(s.db.WithContext(ctx), "article_categories", "category_id", ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CategoryItem, 0, len(categories))
	for i := range categories {
		items = append(items, dto.NewCategoryItem(&categories[i], counts[categories[i].ID]))
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.CategoryListKey, items, cache.CategoryListExpiration); err != nil {
			s.logger.Warnf("写入分类缓存失败: %v", err)
		}
	}
	return items, nil
}

// Get 获取分类详情，includeArticles 时附带该分类下的已发布文章
func (s *CategoryService) Get(ctx context.Context, idOrSlug string, includeArticles bool) (*dto.CategoryDetail, error) {
	category, err := s.find(s.db.WithContext(ctx), idOrSlug)
	if err != nil {
		return nil, err
	}

	counts, err := countBy(s.db.WithContext(ctx), "article_categories", "category_id", []uint{category.ID})
	if err != nil {
		return nil, err
	}
	detail := &dto.CategoryDetail{CategoryItem: dto.NewCategoryItem(category, counts[category.ID])}

	if includeArticles {
		list, err := s.articles.List(ctx, Caller{}, dto.ArticleQuery{
			PageQuery: dto.PageQuery{Page: 1, Limit: dto.MaxLimit},
			Category:  category.Slug,
		})
		if err != nil {
			return nil, err
		}
		detail.Articles = list.Articles
	}
	return detail, nil
}

// Create 创建分类（管理员）
func (s *CategoryService) Create(ctx context.Context, caller Caller, req *dto.CategoryCreateRequest) (*dto.CategoryItem, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}

	name, err := trimmed(req.Name, "name", minNameLength)
	if err != nil {
		return nil, err
	}
	categorySlug := slug.Make(name)
	if categorySlug == "" {
		return nil, Invalid("参数校验失败", map[string]any{"name": "名称必须包含字母或数字"})
	}

	category := &model.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: strings.TrimSpace(req.Description),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, &model.Category{}, name, categorySlug, 0, "分类已存在"); err != nil {
			return err
		}
		if err := tx.Create(category).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("分类已存在", map[string]any{"name": name, "slug": categorySlug})
			}
			return fmt.Errorf("创建分类失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	item := dto.NewCategoryItem(category, 0)
	return &item, nil
}

// Update 更新分类（管理员），改名时重新生成slug
func (s *CategoryService) Update(ctx context.Context, caller Caller, idOrSlug string, req *dto.CategoryUpdateRequest) (*dto.CategoryItem, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}

	var categoryID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.find(tx, idOrSlug)
		if err != nil {
			return err
		}
		categoryID = category.ID

		updates := make(map[string]interface{})
		if req.Name != nil {
			name, err := trimmed(*req.Name, "name", minNameLength)
			if err != nil {
				return err
			}
			if name != category.Name {
				newSlug := slug.Make(name)
				if newSlug == "" {
					return Invalid("参数校验失败", map[string]any{"name": "名称必须包含字母或数字"})
				}
				if err := ensureNameFree(tx, &model.Category{}, name, newSlug, category.ID, "分类已存在"); err != nil {
					return err
				}
				updates["name"] = name
				updates["slug"] = newSlug
			}
		}
		if req.Description != nil {
			updates["description"] = strings.TrimSpace(*req.Description)
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&model.Category{}).Where("id = ?", category.ID).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("分类已存在", nil)
			}
			return fmt.Errorf("更新分类失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	detail, err := s.Get(ctx, fmt.Sprint(categoryID), false)
	if err != nil {
		return nil, err
	}
	return &detail.CategoryItem, nil
}

// Delete 删除分类（管理员），仍被文章使用时拒绝删除
func (s *CategoryService) Delete(ctx context.Context, caller Caller, idOrSlug string) error {
	if err := caller.requireAdmin(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.find(tx, idOrSlug)
		if err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&model.ArticleCategory{}).Where("category_id = ?", category.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("统计分类文章失败: %w", err)
		}
		if n > 0 {
			return Conflict(
				fmt.Sprintf("该分类仍被 %d 篇文章使用，无法删除", n),
				map[string]any{"articleCount": n},
			)
		}

		if err := tx.Delete(&model.Category{}, category.ID).Error; err != nil {
			return fmt.Errorf("删除分类失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) find(db *gorm.DB, idOrSlug string) (*model.Category, error) {
	var category model.Category
	if err := findByIDOrSlug(db, &category, idOrSlug); err != nil {
		if isNotFound(err) {
			return nil, NotFound("分类不存在")
		}
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	return &category, nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.CategoryListKey); err != nil {
		s.logger.Warnf("清理分类缓存失败: %v", err)
	}
}

// ensureNameFree 名称或slug已被其他记录占用时返回冲突
func ensureNameFree(tx *gorm.DB, value interface{}, name, s string, excludeID uint, message string) error {
	var n int64
	q := tx.Model(value).Where("(name = ? OR slug = ?)", name, s)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("检查名称失败: %w", err)
	}
	if n > 0 {
		return Conflict(message, map[string]any{"name": name, "slug": s})
	}
	return nil
}

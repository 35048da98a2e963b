package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/pkg/cache"
	"github.com/nsxzhou1114/blog-platform/pkg/response"
	"github.com/nsxzhou1114/blog-platform/pkg/slug"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// 标题、内容、摘要的关键词匹配条件
const searchClause = "(LOWER(articles.title) LIKE ? OR LOWER(articles.content) LIKE ? OR LOWER(articles.excerpt) LIKE ?)"

// 精选文章数量
const (
	defaultFeaturedLimit = 3
	maxFeaturedLimit     = 20
)

// 未登录用户浏览时使用的会话ID
const anonymousSession = "anonymous"

// ArticleService 文章服务
type ArticleService struct {
	db     *gorm.DB
	cache  cache.Cache
	views  *ViewService
	search *SearchService
	logger *zap.SugaredLogger
}

// NewArticleService 创建文章服务实例，cache 可以为nil
func NewArticleService(db *gorm.DB, c cache.Cache, views *ViewService, search *SearchService, logger *zap.SugaredLogger) *ArticleService {
	return &ArticleService{
		db:     db,
		cache:  c,
		views:  views,
		search: search,
		logger: logger,
	}
}

// List 分页查询文章
func (s *ArticleService) List(ctx context.Context, caller Caller, q dto.ArticleQuery) (*dto.ArticleListResponse, error) {
	q.Normalize()

	build := func() *gorm.DB {
		db := applyVisibility(s.db.WithContext(ctx).Model(&model.Article{}), caller, q.Published)
		if search := strings.TrimSpace(q.Search); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			db = db.Where(searchClause, like, like, like)
		}
		if q.Category != "" {
			db = db.Where("articles.id IN (?)", s.db.Table("article_categories").
				Select("article_categories.article_id").
				Joins("JOIN categories ON categories.id = article_categories.category_id").
				Where("categories.slug = ?", q.Category))
		}
		if q.Tag != "" {
			db = db.Where("articles.id IN (?)", s.db.Table("article_tags").
				Select("article_tags.article_id").
				Joins("JOIN tags ON tags.id = article_tags.tag_id").
				Where("tags.slug = ?", q.Tag))
		}
		if q.Featured != nil {
			db = db.Where("articles.featured = ?", *q.Featured)
		}
		if q.AuthorID != 0 {
			db = db.Where("articles.author_id = ?", q.AuthorID)
		}
		return db
	}

	var (
		total    int64
		articles []model.Article
	)
	// 总数和当前页并发查询
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return build().WithContext(gctx).Count(&total).Error
	})
	g.Go(func() error {
		return build().WithContext(gctx).
			Preload("Author").
			Preload("Categories").
			Preload("Tags").
			Order("articles.created_at DESC").
			Order("articles.id DESC").
			Offset(q.Offset()).
			Limit(q.Limit).
			Find(&articles).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("查询文章列表失败: %w", err)
	}

	items, err := s.toItems(ctx, articles)
	if err != nil {
		return nil, err
	}
	return &dto.ArticleListResponse{
		Articles:   items,
		Pagination: response.NewPagination(total, q.Page, q.Limit),
	}, nil
}

// applyVisibility 管理员可按发布状态筛选；其他用户只能看到已发布文章，
// 请求未发布文章时只返回自己的草稿
func applyVisibility(db *gorm.DB, caller Caller, published *bool) *gorm.DB {
	switch {
	case caller.IsAdmin():
		if published != nil {
			db = db.Where("articles.published = ?", *published)
		}
	case published != nil && !*published:
		if !caller.Authenticated() {
			return db.Where("1 = 0")
		}
		db = db.Where("articles.published = ? AND articles.author_id = ?", false, caller.UserID)
	default:
		db = db.Where("articles.published = ?", true)
	}
	return db
}

// Create 创建文章
func (s *ArticleService) Create(ctx context.Context, caller Caller, req *dto.ArticleCreateRequest) (*dto.ArticleDetail, error) {
	if !caller.Authenticated() {
		return nil, errLoginRequired
	}

	title, err := trimmed(req.Title, "title", minTitleLength)
	if err != nil {
		return nil, err
	}
	articleSlug := slug.Make(title)
	if articleSlug == "" {
		return nil, Invalid("参数校验失败", map[string]any{"title": "标题必须包含字母或数字"})
	}

	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" {
		excerpt = MakeExcerpt(req.Content)
	}

	article := &model.Article{
		Title:      title,
		Slug:       articleSlug,
		Content:    req.Content,
		Excerpt:    excerpt,
		CoverImage: req.CoverImage,
		Published:  req.Published,
		// 非管理员设置的精选标记直接忽略
		Featured: req.Featured && caller.IsAdmin(),
		AuthorID: caller.UserID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSlugFree(tx, &model.Article{}, articleSlug, 0, "文章标题已存在"); err != nil {
			return err
		}

		categories, err := findCategories(tx, req.CategoryIDs)
		if err != nil {
			return err
		}
		tags, err := findTags(tx, req.TagIDs)
		if err != nil {
			return err
		}
		article.Categories = categories
		article.Tags = tags

		// 只写关联表，不回写分类和标签本身
		if err := tx.Omit("Categories.*", "Tags.*").Create(article).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("文章标题已存在", map[string]any{"slug": articleSlug})
			}
			return fmt.Errorf("创建文章失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.load(ctx, s.db.WithContext(ctx), fmt.Sprint(article.ID))
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, created)
	return s.detail(ctx, caller, created)
}

// Get 获取文章详情，非作者访问时记录一次浏览
func (s *ArticleService) Get(ctx context.Context, caller Caller, idOrSlug, sessionID string) (*dto.ArticleDetail, error) {
	article, err := s.load(ctx, s.db.WithContext(ctx), idOrSlug)
	if err != nil {
		return nil, err
	}
	if !article.VisibleTo(caller.UserID, caller.Role) {
		return nil, Forbidden("无权查看该文章")
	}

	if !caller.Owns(article.AuthorID) {
		if sessionID == "" {
			sessionID = anonymousSession
		}
		_, created, err := s.views.Record(ctx, article.ID, sessionID)
		switch {
		case err != nil:
			s.logger.Warnf("记录文章浏览失败: id=%d, %v", article.ID, err)
		case created:
			article.ViewCount++
		}
	}

	return s.detail(ctx, caller, article)
}

// Update 更新文章，categoryIds/tagIds 存在时整体替换
func (s *ArticleService) Update(ctx context.Context, caller Caller, idOrSlug string, req *dto.ArticleUpdateRequest) (*dto.ArticleDetail, error) {
	if !caller.Authenticated() {
		return nil, errLoginRequired
	}

	var articleID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		article, err := s.load(ctx, tx, idOrSlug)
		if err != nil {
			return err
		}
		if !caller.CanManage(article.AuthorID) {
			return Forbidden("只有作者或管理员可以修改文章")
		}
		articleID = article.ID

		updates, err := s.buildUpdates(tx, caller, article, req)
		if err != nil {
			return err
		}

		if req.CategoryIDs != nil {
			categories, err := findCategories(tx, req.CategoryIDs)
			if err != nil {
				return err
			}
			if err := replaceAssociation(tx, article, "Categories", categories); err != nil {
				return err
			}
		}
		if req.TagIDs != nil {
			tags, err := findTags(tx, req.TagIDs)
			if err != nil {
				return err
			}
			if err := replaceAssociation(tx, article, "Tags", tags); err != nil {
				return err
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&model.Article{}).Where("id = ?", article.ID).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("文章标题已存在", map[string]any{"slug": updates["slug"]})
			}
			return fmt.Errorf("更新文章失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, s.db.WithContext(ctx), fmt.Sprint(articleID))
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, updated)
	return s.detail(ctx, caller, updated)
}

// buildUpdates 只收集请求中出现的字段
func (s *ArticleService) buildUpdates(tx *gorm.DB, caller Caller, article *model.Article, req *dto.ArticleUpdateRequest) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if req.Title != nil {
		title, err := trimmed(*req.Title, "title", minTitleLength)
		if err != nil {
			return nil, err
		}
		if title != article.Title {
			newSlug := slug.Make(title)
			if newSlug == "" {
				return nil, Invalid("参数校验失败", map[string]any{"title": "标题必须包含字母或数字"})
			}
			if newSlug != article.Slug {
				if err := ensureSlugFree(tx, &model.Article{}, newSlug, article.ID, "文章标题已存在"); err != nil {
					return nil, err
				}
				updates["slug"] = newSlug
			}
			updates["title"] = title
		}
	}

	content := article.Content
	if req.Content != nil {
		content = *req.Content
		updates["content"] = content
	}
	if req.Excerpt != nil {
		excerpt := strings.TrimSpace(*req.Excerpt)
		if excerpt == "" {
			excerpt = MakeExcerpt(content)
		}
		updates["excerpt"] = excerpt
	}
	if req.CoverImage != nil {
		if *req.CoverImage != "" && !isAbsoluteURL(*req.CoverImage) {
			return nil, Invalid("参数校验失败", map[string]any{"coverImage": "必须是有效的URL"})
		}
		updates["cover_image"] = *req.CoverImage
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}
	// 非管理员设置的精选标记直接忽略
	if req.Featured != nil && caller.IsAdmin() {
		updates["featured"] = *req.Featured
	}
	return updates, nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Delete 删除文章及其评论、点赞、浏览记录和关联
func (s *ArticleService) Delete(ctx context.Context, caller Caller, idOrSlug string) error {
	if !caller.Authenticated() {
		return errLoginRequired
	}

	var articleID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article model.Article
		if err := findByIDOrSlug(tx, &article, idOrSlug); err != nil {
			if isNotFound(err) {
				return NotFound("文章不存在")
			}
			return fmt.Errorf("查询文章失败: %w", err)
		}
		if !caller.CanManage(article.AuthorID) {
			return Forbidden("只有作者或管理员可以删除文章")
		}
		articleID = article.ID
		return deleteArticles(tx, []uint{article.ID})
	})
	if err != nil {
		return err
	}

	s.search.Remove(ctx, articleID)
	s.invalidate(ctx)
	return nil
}

// deleteArticles 级联删除文章，需在事务中调用
func deleteArticles(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	children := []struct {
		value  interface{}
		column string
	}{
		{&model.Comment{}, "article_id"},
		{&model.Like{}, "article_id"},
		{&model.View{}, "article_id"},
		{&model.ArticleCategory{}, "article_id"},
		{&model.ArticleTag{}, "article_id"},
		{&model.Article{}, "id"},
	}
	for _, c := range children {
		if err := tx.Where(c.column+" IN ?", ids).Delete(c.value).Error; err != nil {
			return fmt.Errorf("删除文章数据失败: %w", err)
		}
	}
	return nil
}

// Featured 获取精选文章
func (s *ArticleService) Featured(ctx context.Context, limit int) ([]dto.ArticleItem, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	if limit > maxFeaturedLimit {
		limit = maxFeaturedLimit
	}

	key := cache.FeaturedKey(limit)
	if s.cache != nil {
		var items []dto.ArticleItem
		err := s.cache.GetJSON(ctx, key, &items)
		if err == nil {
			return items, nil
		}
		if !cache.IsMiss(err) {
			s.logger.Warnf("读取精选文章缓存失败: %v", err)
		}
	}

	var articles []model.Article
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Categories").
		Preload("Tags").
		Where("published = ? AND featured = ?", true, true).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("查询精选文章失败: %w", err)
	}

	items, err := s.toItems(ctx, articles)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, items, cache.FeaturedExpiration); err != nil {
			s.logger.Warnf("写入精选文章缓存失败: %v", err)
		}
	}
	return items, nil
}

// load 按ID或slug加载文章及作者、分类、标签
func (s *ArticleService) load(ctx context.Context, db *gorm.DB, idOrSlug string) (*model.Article, error) {
	var article model.Article
	err := findByIDOrSlug(db.Preload("Author").Preload("Categories").Preload("Tags"), &article, idOrSlug)
	if err != nil {
		if isNotFound(err) {
			return nil, NotFound("文章不存在")
		}
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	return &article, nil
}

// detail 组装文章详情：评论按时间倒序、计数和当前用户是否点赞
func (s *ArticleService) detail(ctx context.Context, caller Caller, article *model.Article) (*dto.ArticleDetail, error) {
	items, err := s.toItems(ctx, []model.Article{*article})
	if err != nil {
		return nil, err
	}

	var comments []model.Comment
	err = s.db.WithContext(ctx).
		Preload("Author").
		Where("article_id = ?", article.ID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("查询文章评论失败: %w", err)
	}

	liked := false
	if caller.Authenticated() {
		var n int64
		err := s.db.WithContext(ctx).Model(&model.Like{}).
			Where("article_id = ? AND user_id = ?", article.ID, caller.UserID).
			Count(&n).Error
		if err != nil {
			return nil, fmt.Errorf("查询点赞状态失败: %w", err)
		}
		liked = n > 0
	}

	return &dto.ArticleDetail{
		ArticleItem: items[0],
		Content:     article.Content,
		Comments:    dto.NewCommentItems(comments),
		UserLiked:   liked,
	}, nil
}

// toItems 批量统计评论数和点赞数后转换为列表项
func (s *ArticleService) toItems(ctx context.Context, articles []model.Article) ([]dto.ArticleItem, error) {
	ids := make([]uint, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}

	db := s.db.WithContext(ctx)
	comments, err := countBy(db, "comments", "article_id", ids)
	if err != nil {
		return nil, err
	}
	likes, err := countBy(db, "likes", "article_id", ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ArticleItem, 0, len(articles))
	for i := range articles {
		a := &articles[i]
		items = append(items, dto.NewArticleItem(a, dto.ArticleCounts{
			Comments: comments[a.ID],
			Likes:    likes[a.ID],
		}))
	}
	return items, nil
}

// afterWrite 同步搜索索引并清理相关缓存
func (s *ArticleService) afterWrite(ctx context.Context, article *model.Article) {
	s.search.Index(ctx, article)
	s.invalidate(ctx)
}

// invalidate 文章变更会影响精选列表和分类/标签的文章计数
func (s *ArticleService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, cache.FeaturedPrefix); err != nil {
		s.logger.Warnf("清理精选文章缓存失败: %v", err)
	}
	if err := s.cache.Delete(ctx, cache.CategoryListKey, cache.TagListKey); err != nil {
		s.logger.Warnf("清理分类标签缓存失败: %v", err)
	}
}

// ensureSlugFree slug已被其他记录占用时返回冲突
func ensureSlugFree(tx *gorm.DB, value interface{}, s string, excludeID uint, message string) error {
	var n int64
	q := tx.Model(value).Where("slug = ?", s)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("检查slug失败: %w", err)
	}
	if n > 0 {
		return Conflict(message, map[string]any{"slug": s})
	}
	return nil
}

// findCategories 查询分类，存在不存在的ID时返回参数错误
func findCategories(tx *gorm.DB, ids []uint) ([]model.Category, error) {
	ids = uniqueIDs(ids)
	categories := make([]model.Category, 0, len(ids))
	if len(ids) == 0 {
		return categories, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}

	found := make([]uint, 0, len(categories))
	for _, c := range categories {
		found = append(found, c.ID)
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return nil, Invalid("分类不存在", map[string]any{"categoryIds": "不存在的分类ID: " + joinIDs(missing)})
	}
	return categories, nil
}

// findTags 查询标签，存在不存在的ID时返回参数错误
func findTags(tx *gorm.DB, ids []uint) ([]model.Tag, error) {
	ids = uniqueIDs(ids)
	tags := make([]model.Tag, 0, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("查询标签失败: %w", err)
	}

	found := make([]uint, 0, len(tags))
	for _, t := range tags {
		found = append(found, t.ID)
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return nil, Invalid("标签不存在", map[string]any{"tagIds": "不存在的标签ID: " + joinIDs(missing)})
	}
	return tags, nil
}

// replaceAssociation 用新集合整体替换多对多关联，空集合表示清空。
// ref 只含主键，其他关联不会被写回
func replaceAssociation(tx *gorm.DB, article *model.Article, name string, values interface{}) error {
	ref := &model.Article{Base: model.Base{ID: article.ID}}
	assoc := tx.Model(ref).Association(name)
	var err error
	switch v := values.(type) {
	case []model.Category:
		if len(v) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(v)
		}
	case []model.Tag:
		if len(v) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(v)
		}
	default:
		return fmt.Errorf("不支持的关联类型: %T", values)
	}
	if err != nil {
		return fmt.Errorf("更新%s关联失败: %w", name, err)
	}
	return nil
}

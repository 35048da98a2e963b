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

// UserService 用户管理服务
type UserService struct {
	db       *gorm.DB
	articles *ArticleService // 删除用户时清理文章相关缓存
	search   *SearchService
	logger   *zap.SugaredLogger
}

// NewUserService 创建用户服务实例
func NewUserService(db *gorm.DB, articles *ArticleService, search *SearchService, logger *zap.SugaredLogger) *UserService {
	return &UserService{db: db, articles: articles, search: search, logger: logger}
}

// List 分页查询用户（管理员）
func (s *UserService) List(ctx context.Context, caller Caller, q dto.UserQuery) (*dto.UserListResponse, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}
	q.Normalize()

	build := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&model.User{})
		if search := strings.TrimSpace(q.Search); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			db = db.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
		}
		if q.Role != "" {
			db = db.Where("role = ?", q.Role)
		}
		if q.IsActive != nil {
			db = db.Where("is_active = ?", *q.IsActive)
		}
		return db
	}

	var (
		total int64
		users []model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return build().WithContext(gctx).Count(&total).Error
	})
	g.Go(func() error {
		return build().WithContext(gctx).
			Order("created_at DESC").
			Order("id DESC").
			Offset(q.Offset()).
			Limit(q.Limit).
			Find(&users).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("查询用户列表失败: %w", err)
	}

	items, err := s.toItems(ctx, users)
	if err != nil {
		return nil, err
	}
	return &dto.UserListResponse{
		Users:      items,
		Pagination: response.NewPagination(total, q.Page, q.Limit),
	}, nil
}

// Get 获取用户信息，本人或管理员可查看
func (s *UserService) Get(ctx context.Context, caller Caller, id uint) (*dto.UserItem, error) {
	if !caller.Authenticated() {
		return nil, errLoginRequired
	}
	if !caller.CanManage(id) {
		return nil, Forbidden("无权查看该用户")
	}

	user, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	items, err := s.toItems(ctx, []model.User{*user})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Me 获取当前登录用户
func (s *UserService) Me(ctx context.Context, caller Caller) (*dto.UserItem, error) {
	if !caller.Authenticated() {
		return nil, errLoginRequired
	}
	return s.Get(ctx, caller, caller.UserID)
}

// Update 更新用户信息，角色和状态只有管理员可以修改
func (s *UserService) Update(ctx context.Context, caller Caller, id uint, req *dto.UserUpdateRequest) (*dto.UserItem, error) {
	if !caller.Authenticated() {
		return nil, errLoginRequired
	}
	if !caller.CanManage(id) {
		return nil, Forbidden("无权修改该用户")
	}
	if (req.Role != nil || req.IsActive != nil) && !caller.IsAdmin() {
		return nil, Forbidden("只有管理员可以修改角色或状态")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if req.Name != nil {
			name, err := trimmed(*req.Name, "name", minNameLength)
			if err != nil {
				return err
			}
			updates["name"] = name
		}
		if req.Email != nil {
			email := normalizeEmail(*req.Email)
			if email != user.Email {
				var n int64
				if err := tx.Model(&model.User{}).Where("email = ? AND id <> ?", email, id).Count(&n).Error; err != nil {
					return fmt.Errorf("查询用户失败: %w", err)
				}
				if n > 0 {
					return Conflict("邮箱已被注册", map[string]any{"email": email})
				}
				updates["email"] = email
			}
		}
		if req.Password != nil {
			hash, err := hashPassword(*req.Password)
			if err != nil {
				return err
			}
			updates["password"] = hash
		}
		if req.Bio != nil {
			updates["bio"] = *req.Bio
		}
		if req.Image != nil {
			updates["image"] = *req.Image
		}
		if req.Role != nil {
			updates["role"] = *req.Role
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&model.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("邮箱已被注册", nil)
			}
			return fmt.Errorf("更新用户失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, caller, id)
}

// Delete 删除用户（管理员），同时删除其文章、评论和点赞
func (s *UserService) Delete(ctx context.Context, caller Caller, id uint) error {
	if err := caller.requireAdmin(); err != nil {
		return err
	}

	var articleIDs []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.find(ctx, tx, id); err != nil {
			return err
		}

		if err := tx.Model(&model.Article{}).Where("author_id = ?", id).Pluck("id", &articleIDs).Error; err != nil {
			return fmt.Errorf("查询用户文章失败: %w", err)
		}
		if err := deleteArticles(tx, articleIDs); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return fmt.Errorf("删除用户点赞失败: %w", err)
		}
		if err := tx.Where("author_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return fmt.Errorf("删除用户评论失败: %w", err)
		}
		if err := tx.Delete(&model.User{}, id).Error; err != nil {
			return fmt.Errorf("删除用户失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(articleIDs) > 0 {
		s.articles.invalidate(ctx)
	}
	for _, articleID := range articleIDs {
		s.search.Remove(ctx, articleID)
	}
	s.logger.Infof("已删除用户 id=%d 及其 %d 篇文章", id, len(articleIDs))
	return nil
}

// CurrentRole 查询账号当前的角色和启用状态，账号不存在时视为未启用
func (s *UserService) CurrentRole(ctx context.Context, id uint) (string, bool, error) {
	var user model.User
	err := s.db.WithContext(ctx).Select("id", "role", "is_active").First(&user, id).Error
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("查询用户失败: %w", err)
	}
	return user.Role, user.IsActive, nil
}

// CreateAdmin 创建管理员账号，供命令行使用
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*model.User, error) {
	return createUser(ctx, s.db, name, email, password, model.RoleAdmin)
}

// SetRole 按邮箱修改角色，供命令行使用
func (s *UserService) SetRole(ctx context.Context, email, role string) error {
	if role != model.RoleUser && role != model.RoleAdmin {
		return Invalid("参数校验失败", map[string]any{"role": "必须是 USER 或 ADMIN"})
	}
	return s.updateByEmail(ctx, email, "role", role)
}

// SetActive 按邮箱启用或禁用账号，供命令行使用
func (s *UserService) SetActive(ctx context.Context, email string, active bool) error {
	return s.updateByEmail(ctx, email, "is_active", active)
}

func (s *UserService) updateByEmail(ctx context.Context, email, column string, value interface{}) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", normalizeEmail(email)).
		Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("更新用户失败: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL 值未变化时影响行数为0，需要再确认用户是否存在
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", normalizeEmail(email)).Count(&n).Error; err != nil {
		return fmt.Errorf("查询用户失败: %w", err)
	}
	if n == 0 {
		return NotFound("用户不存在")
	}
	return nil
}

func (s *UserService) find(ctx context.Context, db *gorm.DB, id uint) (*model.User, error) {
	var user model.User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("用户不存在")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// toItems 附带文章、评论、点赞数量
func (s *UserService) toItems(ctx context.Context, users []model.User) ([]dto.UserItem, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	db := s.db.WithContext(ctx)
	articles, err := countBy(db, "articles", "author_id", ids)
	if err != nil {
		return nil, err
	}
	comments, err := countBy(db, "comments", "author_id", ids)
	if err != nil {
		return nil, err
	}
	likes, err := countBy(db, "likes", "user_id", ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserItem, 0, len(users))
	for i := range users {
		item := dto.NewUserItem(&users[i])
		item.Count = &dto.UserCounts{
			Articles: articles[users[i].ID],
			Comments: comments[users[i].ID],
			Likes:    likes[users[i].ID],
		}
		items = append(items, item)
	}
	return items, nil
}

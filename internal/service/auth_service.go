package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/model"
	"github.com/nsxzhou1114/blog-platform/pkg/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// passwordCost bcrypt计算强度
var passwordCost = bcrypt.DefaultCost

// AuthService 注册、登录与令牌管理
type AuthService struct {
	db     *gorm.DB
	tokens *auth.Manager
	logger *zap.SugaredLogger
}

// NewAuthService 创建认证服务实例
func NewAuthService(db *gorm.DB, tokens *auth.Manager, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{db: db, tokens: tokens, logger: logger}
}

// Register 注册普通用户
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserItem, error) {
	user, err := createUser(ctx, s.db, req.Name, req.Email, req.Password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	item := dto.NewUserItem(user)
	return &item, nil
}

// createUser 创建用户，邮箱统一转为小写
func createUser(ctx context.Context, db *gorm.DB, name, email, password, role string) (*model.User, error) {
	name, err := trimmed(name, "name", minNameLength)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)

	var n int64
	if err := db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if n > 0 {
		return nil, Conflict("邮箱已被注册", map[string]any{"email": email})
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, Conflict("邮箱已被注册", map[string]any{"email": email})
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, Unauthenticated("邮箱或密码错误")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, Unauthenticated("邮箱或密码错误")
	}
	if !user.IsActive {
		return nil, Forbidden("账号已被禁用")
	}

	tokens, err := s.tokens.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("生成令牌失败: %w", err)
	}
	s.logger.Infof("用户登录: id=%d", user.ID)

	return &dto.LoginResponse{User: dto.NewUserItem(&user), Tokens: tokens}, nil
}

// Refresh 使用刷新令牌换取新的令牌对，旧刷新令牌随即失效
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.tokens.ParseToken(ctx, refreshToken, auth.RefreshToken)
	if err != nil {
		return nil, tokenError(err)
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if isNotFound(err) {
			return nil, Unauthenticated("用户不存在")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if !user.IsActive {
		return nil, Forbidden("账号已被禁用")
	}

	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("撤销刷新令牌失败: %w", err)
	}

	// 角色以数据库为准
	tokens, err := s.tokens.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("生成令牌失败: %w", err)
	}
	return &dto.LoginResponse{User: dto.NewUserItem(&user), Tokens: tokens}, nil
}

// Logout 撤销访问令牌
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return errLoginRequired
	}
	if err := s.tokens.Revoke(ctx, accessToken); err != nil {
		return tokenError(err)
	}
	return nil
}

// tokenError 令牌本身的问题返回401，其余按内部错误处理
func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrTokenRevoked):
		return Unauthenticated("令牌已失效")
	case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrTokenType):
		return Unauthenticated("无效的令牌")
	default:
		return fmt.Errorf("校验令牌失败: %w", err)
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("密码加密失败: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/nsxzhou1114/blog-platform/internal/config"
)

// TokenType 定义token类型
type TokenType string

const (
	// AccessToken 访问令牌，用于访问资源
	AccessToken TokenType = "access"
	// RefreshToken 刷新令牌，用于获取新的访问令牌
	RefreshToken TokenType = "refresh"
)

var (
	// ErrTokenRevoked 令牌已被撤销
	ErrTokenRevoked = errors.New("令牌已被撤销")
	// ErrTokenInvalid 令牌无效
	ErrTokenInvalid = errors.New("无效的令牌")
	// ErrTokenType 令牌类型不匹配
	ErrTokenType = errors.New("令牌类型错误")
)

// Claims 自定义JWT声明结构体，令牌ID保存在 StandardClaims.Id (jti)
type Claims struct {
	UserID uint      `json:"uid"`
	Role   string    `json:"role"`
	Type   TokenType `json:"type"`
	jwt.StandardClaims
}

// TokenPair 包含访问令牌和刷新令牌
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"` // 访问令牌过期时间（秒）
	TokenID      string `json:"tokenId"`
}

// Manager 负责签发、解析和撤销令牌
type Manager struct {
	cfg       config.JWTConfig
	blacklist Blacklist
}

// NewManager 创建令牌管理器，blacklist为nil时使用内存黑名单
func NewManager(cfg config.JWTConfig, blacklist Blacklist) *Manager {
	if blacklist == nil {
		blacklist = NewMemoryBlacklist()
	}
	return &Manager{cfg: cfg, blacklist: blacklist}
}

// BufferTime 令牌临近过期的提醒窗口
func (m *Manager) BufferTime() time.Duration {
	return time.Duration(m.cfg.BufferSeconds) * time.Second
}

// GenerateTokenPair 生成访问令牌和刷新令牌对
func (m *Manager) GenerateTokenPair(userID uint, role string) (*TokenPair, error) {
	accessExpire := time.Duration(m.cfg.AccessExpireSeconds) * time.Second
	refreshExpire := time.Duration(m.cfg.RefreshExpireSeconds) * time.Second
	tokenID := uuid.NewString()

	accessToken, err := m.generateToken(userID, role, AccessToken, accessExpire, tokenID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := m.generateToken(userID, role, RefreshToken, refreshExpire, tokenID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessExpire.Seconds()),
		TokenID:      tokenID,
	}, nil
}

// generateToken 创建指定类型的JWT令牌
func (m *Manager) generateToken(userID uint, role string, tokenType TokenType, expiration time.Duration, tokenID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Type:   tokenType,
		StandardClaims: jwt.StandardClaims{
			Id:        tokenID,
			ExpiresAt: now.Add(expiration).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    m.cfg.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(m.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("签名令牌失败: %w", err)
	}
	return tokenString, nil
}

// parse 校验签名和有效期
func (m *Manager) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("不支持的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseToken 解析令牌并校验类型和黑名单
func (m *Manager) ParseToken(ctx context.Context, tokenString string, want TokenType) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, ErrTokenType
	}

	revoked, err := m.blacklist.Contains(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("检查令牌黑名单失败: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke 撤销令牌直到其自然过期
func (m *Manager) Revoke(ctx context.Context, tokenString string) error {
	claims, err := m.parse(tokenString)
	if err != nil {
		return err
	}
	return m.blacklist.Add(ctx, tokenString, time.Unix(claims.ExpiresAt, 0))
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nsxzhou1114/blog-platform/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:            "test-secret",
		AccessExpireSeconds:  60,
		RefreshExpireSeconds: 3600,
		BufferSeconds:        10,
		Issuer:               "test",
	}
}

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager(testJWTConfig(), nil)
	ctx := context.Background()

	pair, err := m.GenerateTokenPair(42, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, 60, pair.ExpiresIn)
	assert.NotEmpty(t, pair.TokenID)

	claims, err := m.ParseToken(ctx, pair.AccessToken, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, pair.TokenID, claims.Id)

	// 刷新令牌不能当作访问令牌使用
	_, err = m.ParseToken(ctx, pair.RefreshToken, AccessToken)
	assert.ErrorIs(t, err, ErrTokenType)

	_, err = m.ParseToken(ctx, pair.RefreshToken, RefreshToken)
	assert.NoError(t, err)
}

func TestManager_RejectsForeignSignature(t *testing.T) {
	other := testJWTConfig()
	other.SecretKey = "another-secret"
	pair, err := NewManager(other, nil).GenerateTokenPair(1, "USER")
	require.NoError(t, err)

	_, err = NewManager(testJWTConfig(), nil).ParseToken(context.Background(), pair.AccessToken, AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = NewManager(testJWTConfig(), nil).ParseToken(context.Background(), "not-a-token", AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestManager_RejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessExpireSeconds = -1
	m := NewManager(cfg, nil)

	pair, err := m.GenerateTokenPair(1, "USER")
	require.NoError(t, err)

	_, err = m.ParseToken(context.Background(), pair.AccessToken, AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestManager_Revoke(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	blacklists := map[string]Blacklist{
		"memory": NewMemoryBlacklist(),
		"redis":  NewRedisBlacklist(rdb),
	}

	for name, bl := range blacklists {
		t.Run(name, func(t *testing.T) {
			m := NewManager(testJWTConfig(), bl)
			ctx := context.Background()

			pair, err := m.GenerateTokenPair(7, "USER")
			require.NoError(t, err)
			require.NoError(t, m.Revoke(ctx, pair.AccessToken))

			_, err = m.ParseToken(ctx, pair.AccessToken, AccessToken)
			assert.ErrorIs(t, err, ErrTokenRevoked)

			// 撤销访问令牌不影响同一对中的刷新令牌
			_, err = m.ParseToken(ctx, pair.RefreshToken, RefreshToken)
			assert.NoError(t, err)
		})
	}
}

func TestRedisBlacklist_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	bl := NewRedisBlacklist(rdb)
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "tok", time.Now().Add(time.Minute)))
	ok, err := bl.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = bl.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	// 已过期的令牌不写入
	require.NoError(t, bl.Add(ctx, "old", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists(blacklistKeyPrefix+"old"))
}

func TestMemoryBlacklist_Expiry(t *testing.T) {
	bl := NewMemoryBlacklist()
	now := time.Now()
	bl.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "a", now.Add(time.Minute)))
	ok, _ := bl.Contains(ctx, "a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = bl.Contains(ctx, "a")
	assert.False(t, ok)

	// 下一次写入时清理过期条目
	require.NoError(t, bl.Add(ctx, "b", now.Add(time.Minute)))
	assert.Len(t, bl.tokens, 1)
}

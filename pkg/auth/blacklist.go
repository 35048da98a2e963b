package auth

import (
	"context"
	"sync"
	"time"
)

// Blacklist 令牌黑名单
type Blacklist interface {
	// Add 将令牌加入黑名单直到 expireAt
	Add(ctx context.Context, token string, expireAt time.Time) error
	// Contains 检查令牌是否在黑名单中
	Contains(ctx context.Context, token string) (bool, error)
}

// MemoryBlacklist 进程内黑名单，单实例部署或未启用redis时使用
type MemoryBlacklist struct {
	tokens map[string]time.Time
	mutex  sync.RWMutex
	now    func() time.Time
}

// NewMemoryBlacklist 创建内存黑名单
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		tokens: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Add 将令牌加入黑名单，顺带清理已过期的条目
func (b *MemoryBlacklist) Add(_ context.Context, token string, expireAt time.Time) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	now := b.now()
	for t, exp := range b.tokens {
		if now.After(exp) {
			delete(b.tokens, t)
		}
	}
	if expireAt.After(now) {
		b.tokens[token] = expireAt
	}
	return nil
}

// Contains 检查令牌是否在黑名单中
func (b *MemoryBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	expireAt, ok := b.tokens[token]
	return ok && b.now().Before(expireAt), nil
}

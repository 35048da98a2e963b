package service

import "github.com/nsxzhou1114/blog-platform/internal/model"

// Caller 调用者身份，零值表示匿名访问
type Caller struct {
	UserID uint
	Role   string
}

// Authenticated 是否已登录
func (c Caller) Authenticated() bool {
	return c.UserID != 0
}

// IsAdmin 是否为管理员
func (c Caller) IsAdmin() bool {
	return c.Authenticated() && c.Role == model.RoleAdmin
}

// Owns 是否为资源所有者
func (c Caller) Owns(ownerID uint) bool {
	return c.Authenticated() && c.UserID == ownerID
}

// CanManage 所有者或管理员
func (c Caller) CanManage(ownerID uint) bool {
	return c.IsAdmin() || c.Owns(ownerID)
}

// requireAdmin 匿名返回401，非管理员返回403
func (c Caller) requireAdmin() error {
	if !c.Authenticated() {
		return errLoginRequired
	}
	if !c.IsAdmin() {
		return errAdminRequired
	}
	return nil
}

// System 命令行等内部任务使用的管理员身份，不对应任何真实用户
var System = Caller{UserID: ^uint(0), Role: model.RoleAdmin}

package model

// 用户角色
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User 用户模型
type User struct {
	Base
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Email    string `gorm:"type:varchar(191);not null;uniqueIndex" json:"email"`
	Password string `gorm:"type:varchar(100);not null" json:"-"`
	Role     string `gorm:"type:varchar(20);not null;default:'USER';index" json:"role"`
	Bio      string `gorm:"type:text" json:"bio"`
	Image    string `gorm:"type:varchar(500)" json:"image"`
	IsActive bool   `gorm:"not null;index" json:"isActive"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

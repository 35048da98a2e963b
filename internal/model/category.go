package model

// Category 分类模型
type Category struct {
	Base
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Slug        string `gorm:"type:varchar(191);not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

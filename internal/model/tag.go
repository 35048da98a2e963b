package model

// Tag 标签模型
type Tag struct {
	Base
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Slug string `gorm:"type:varchar(191);not null;uniqueIndex" json:"slug"`
}

// TableName 指定表名
func (Tag) TableName() string {
	return "tags"
}

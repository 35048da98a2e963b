package model

// Comment 评论模型
type Comment struct {
	Base
	Content   string `gorm:"type:text;not null" json:"content"`
	ArticleID uint   `gorm:"not null;index" json:"articleId"`
	AuthorID  uint   `gorm:"not null;index" json:"authorId"`

	// 关联
	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comments"
}

package model

// Like 文章点赞模型，每个用户对每篇文章至多一条
type Like struct {
	Base
	ArticleID uint `gorm:"not null;uniqueIndex:idx_like_article_user" json:"articleId"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_like_article_user;index" json:"userId"`

	// 关联
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Like) TableName() string {
	return "likes"
}

// View 文章浏览记录，每个会话对每篇文章至多一条
type View struct {
	Base
	ArticleID uint   `gorm:"not null;uniqueIndex:idx_view_article_session" json:"articleId"`
	SessionID string `gorm:"type:varchar(191);not null;uniqueIndex:idx_view_article_session" json:"sessionId"`
}

// TableName 指定表名
func (View) TableName() string {
	return "views"
}

package model

// Article 文章模型
type Article struct {
	Base
	Title      string `gorm:"type:varchar(255);not null" json:"title"`
	Slug       string `gorm:"type:varchar(191);not null;uniqueIndex" json:"slug"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Excerpt    string `gorm:"type:text" json:"excerpt"`
	CoverImage string `gorm:"type:varchar(500)" json:"coverImage"`
	Published  bool   `gorm:"not null;index" json:"published"`
	Featured   bool   `gorm:"not null;index" json:"featured"`
	ViewCount  int64  `gorm:"not null;default:0" json:"viewCount"` // 冗余计数，与 views 表行数保持一致
	AuthorID   uint   `gorm:"not null;index" json:"authorId"`

	// 关联
	Author     User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Categories []Category `gorm:"many2many:article_categories;" json:"categories,omitempty"`
	Tags       []Tag      `gorm:"many2many:article_tags;" json:"tags,omitempty"`
}

// TableName 指定表名
func (Article) TableName() string {
	return "articles"
}

// VisibleTo 未发布的文章只对作者和管理员可见
func (a *Article) VisibleTo(userID uint, role string) bool {
	if a.Published {
		return true
	}
	return role == RoleAdmin || (userID != 0 && userID == a.AuthorID)
}

// ArticleCategory 文章-分类关联模型
type ArticleCategory struct {
	ArticleID  uint `gorm:"primaryKey;autoIncrement:false" json:"articleId"`
	CategoryID uint `gorm:"primaryKey;autoIncrement:false;index" json:"categoryId"`
}

// TableName 指定表名
func (ArticleCategory) TableName() string {
	return "article_categories"
}

// ArticleTag 文章-标签关联模型
type ArticleTag struct {
	ArticleID uint `gorm:"primaryKey;autoIncrement:false" json:"articleId"`
	TagID     uint `gorm:"primaryKey;autoIncrement:false;index" json:"tagId"`
}

// TableName 指定表名
func (ArticleTag) TableName() string {
	return "article_tags"
}

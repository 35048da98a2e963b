package model

import (
	"fmt"

	"gorm.io/gorm"
)

// 需要自动迁移的模型列表，关联表放在文章之后
var models = []interface{}{
	&User{},
	&Category{},
	&Tag{},
	&Article{},
	&ArticleCategory{},
	&ArticleTag{},
	&Comment{},
	&Like{},
	&View{},
}

// InitTables 初始化数据库表
func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("自动迁移数据库表失败: %w", err)
	}
	return nil
}

package db

import "gorm.io/gorm"

// Tag 定义了标签模型
type Tag struct {
	gorm.Model
	Title string  `gorm:"uniqueIndex;not null"`
	Posts []*Post `gorm:"many2many:post_tags;"`

	// 非数据库字段，查询时由聚合结果填充
	PostsCount int64 `gorm:"-"`
}

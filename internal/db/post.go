package db

import (
	"time"

	"gorm.io/gorm"
)

// Post 定义了文章模型
type Post struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Text        string `gorm:"type:text"`
	Slug        string `gorm:"uniqueIndex;not null"`
	AuthorID    uint   `gorm:"index"`
	Author      User
	ImagePath   string
	PublishedAt time.Time `gorm:"index"`
	Tags        []*Tag    `gorm:"many2many:post_tags;"`
	Comments    []Comment
	Likes       []Like

	// 非数据库字段，查询时由聚合结果填充
	LikesCount    int64 `gorm:"-"`
	CommentsCount int64 `gorm:"-"`
}

// HasImage reports whether an image is attached to the post.
func (p *Post) HasImage() bool {
	return p != nil && p.ImagePath != ""
}

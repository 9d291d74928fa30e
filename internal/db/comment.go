package db

import (
	"time"

	"gorm.io/gorm"
)

// Comment 定义了文章评论模型
type Comment struct {
	gorm.Model
	Text        string `gorm:"type:text;not null"`
	PublishedAt time.Time
	AuthorID    uint `gorm:"index"`
	Author      User
	PostID      uint `gorm:"index;not null"`
}

package db

import "time"

// Like 记录某位用户对文章的点赞，同一用户对同一文章只能点赞一次。
type Like struct {
	ID        uint `gorm:"primaryKey"`
	PostID    uint `gorm:"not null;uniqueIndex:idx_like_post_author"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_like_post_author"`
	CreatedAt time.Time
}

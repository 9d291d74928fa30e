package store

import (
	"context"

	"github.com/sensive/internal/db"
	"gorm.io/gorm"
)

// PostOrder selects the ordering applied by Posts.
type PostOrder int

const (
	// OrderNone leaves ordering to the caller, typically when posts are fetched by ids
	// that were already ranked.
	OrderNone PostOrder = iota
	// OrderNewest sorts by publication time, newest first.
	OrderNewest
)

// PostSpec describes which posts a query selects.
type PostSpec struct {
	IDs         []uint
	Slug        string
	TagID       uint
	PopularOnly bool // RankPosts only: require at least one like
	Order       PostOrder
	Limit       int
}

// TagSpec describes which tags RankTags selects.
type TagSpec struct {
	Title  string
	PostID uint
	Limit  int
}

// Count is one row of a grouped count, keyed by entity id.
type Count struct {
	ID    uint
	Total int64
}

// PostTag is one row of the post_tags join table.
type PostTag struct {
	PostID uint
	TagID  uint
}

// Store issues read queries against the blog tables. Every method performs a bounded
// number of round trips regardless of how many ids it is given.
type Store struct {
	db *gorm.DB
}

// New wraps a gorm connection.
func New(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// RankPosts returns post ids ordered by like count descending, ties broken by newest
// publication and then id.
func (s *Store) RankPosts(ctx context.Context, spec PostSpec) ([]Count, error) {
	join := "LEFT JOIN likes ON likes.post_id = posts.id"
	if spec.PopularOnly {
		join = "JOIN likes ON likes.post_id = posts.id"
	}

	query := s.db.WithContext(ctx).
		Model(&db.Post{}).
		Select("posts.id AS id, COUNT(likes.id) AS total").
		Joins(join)
	query = s.filterPosts(query, spec).
		Group("posts.id").
		Order("total desc").
		Order("posts.published_at desc").
		Order("posts.id desc")
	if spec.Limit > 0 {
		query = query.Limit(spec.Limit)
	}

	var rows []Count
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Posts loads base post rows with their authors preloaded.
func (s *Store) Posts(ctx context.Context, spec PostSpec) ([]db.Post, error) {
	query := s.db.WithContext(ctx).
		Model(&db.Post{}).
		Preload("Author")
	query = s.filterPosts(query, spec)

	if spec.Order == OrderNewest {
		query = query.Order("posts.published_at desc").Order("posts.id desc")
	}
	if spec.Limit > 0 {
		query = query.Limit(spec.Limit)
	}

	var posts []db.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// RankTags returns ids of tags attached to at least one live post, ordered by the
// number of such posts descending and then by title.
func (s *Store) RankTags(ctx context.Context, spec TagSpec) ([]Count, error) {
	query := s.db.WithContext(ctx).
		Model(&db.Tag{}).
		Select("tags.id AS id, COUNT(posts.id) AS total").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("JOIN posts ON posts.id = post_tags.post_id AND posts.deleted_at IS NULL")

	if spec.Title != "" {
		query = query.Where("tags.title = ?", spec.Title)
	}
	if spec.PostID != 0 {
		linked := s.db.Table("post_tags").Select("tag_id").Where("post_id = ?", spec.PostID)
		query = query.Where("tags.id IN (?)", linked)
	}

	query = query.
		Group("tags.id").
		Order("total desc").
		Order("tags.title asc")
	if spec.Limit > 0 {
		query = query.Limit(spec.Limit)
	}

	var rows []Count
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Tags loads tag rows by id in no particular order.
func (s *Store) Tags(ctx context.Context, ids []uint) ([]db.Tag, error) {
	if len(ids) == 0 {
		return []db.Tag{}, nil
	}

	var tags []db.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CommentCounts returns the number of live comments per post. Posts without comments
// are absent from the map.
func (s *Store) CommentCounts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return s.countByPost(ctx, &db.Comment{}, postIDs)
}

// LikeCounts returns the number of likes per post. Posts without likes are absent from
// the map.
func (s *Store) LikeCounts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return s.countByPost(ctx, &db.Like{}, postIDs)
}

// PostTagLinks returns the post_tags rows of the given posts.
func (s *Store) PostTagLinks(ctx context.Context, postIDs []uint) ([]PostTag, error) {
	if len(postIDs) == 0 {
		return []PostTag{}, nil
	}

	var links []PostTag
	if err := s.db.WithContext(ctx).
		Table("post_tags").
		Select("post_id, tag_id").
		Where("post_id IN ?", postIDs).
		Scan(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// Comments returns the live comments of a post, oldest first, with authors preloaded.
func (s *Store) Comments(ctx context.Context, postID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("published_at asc").
		Order("id asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Store) countByPost(ctx context.Context, model interface{}, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []Count
	if err := s.db.WithContext(ctx).
		Model(model).
		Select("post_id AS id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ID] = row.Total
	}
	return counts, nil
}

func (s *Store) filterPosts(query *gorm.DB, spec PostSpec) *gorm.DB {
	if len(spec.IDs) > 0 {
		query = query.Where("posts.id IN ?", spec.IDs)
	}
	if spec.Slug != "" {
		query = query.Where("posts.slug = ?", spec.Slug)
	}
	if spec.TagID != 0 {
		tagged := s.db.Table("post_tags").Select("post_id").Where("tag_id = ?", spec.TagID)
		query = query.Where("posts.id IN (?)", tagged)
	}
	return query
}

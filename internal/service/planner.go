package service

import (
	"context"
	"fmt"

	"github.com/sensive/internal/db"
	"github.com/sensive/internal/store"
)

// Planner builds the post and tag sequences the pages render. Counts are computed by
// one grouped query per kind of count and merged in Go, never fetched per row.
type Planner struct {
	store *store.Store
}

// NewPlanner creates a Planner instance.
func NewPlanner(s *store.Store) *Planner {
	return &Planner{store: s}
}

// FetchPopularTags returns every tag attached to a live post, PostsCount attached,
// ordered by PostsCount descending.
func (p *Planner) FetchPopularTags(ctx context.Context) ([]*db.Tag, error) {
	ranks, err := p.store.RankTags(ctx, store.TagSpec{})
	if err != nil {
		return nil, fmt.Errorf("rank tags: %w", err)
	}
	return p.loadRankedTags(ctx, ranks)
}

// FetchPopularTagByTitle looks a tag up among the popular tags only.
func (p *Planner) FetchPopularTagByTitle(ctx context.Context, title string) (*db.Tag, error) {
	if title == "" {
		return nil, ErrTagNotFound
	}

	ranks, err := p.store.RankTags(ctx, store.TagSpec{Title: title, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("rank tag %q: %w", title, err)
	}
	tags, err := p.loadRankedTags(ctx, ranks)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, ErrTagNotFound
	}
	return tags[0], nil
}

// FetchRelatedTags returns the tags of a post ordered by their overall popularity.
func (p *Planner) FetchRelatedTags(ctx context.Context, post *db.Post) ([]*db.Tag, error) {
	ranks, err := p.store.RankTags(ctx, store.TagSpec{PostID: post.ID})
	if err != nil {
		return nil, fmt.Errorf("rank tags of post %d: %w", post.ID, err)
	}
	return p.loadRankedTags(ctx, ranks)
}

// FetchPopularPosts returns up to limit posts ordered by LikesCount descending, with
// comment counts and shared tags attached.
func (p *Planner) FetchPopularPosts(ctx context.Context, limit int, tags *TagIndex) ([]*db.Post, error) {
	return p.fetchRankedPosts(ctx, store.PostSpec{Limit: limit}, tags)
}

// FetchTagPosts returns up to limit posts carrying tag, popularity ordered and annotated
// like FetchPopularPosts.
func (p *Planner) FetchTagPosts(ctx context.Context, tag *db.Tag, limit int, tags *TagIndex) ([]*db.Post, error) {
	return p.fetchRankedPosts(ctx, store.PostSpec{TagID: tag.ID, Limit: limit}, tags)
}

// FetchFreshPosts returns up to limit posts, newest first, annotated like
// FetchPopularPosts.
func (p *Planner) FetchFreshPosts(ctx context.Context, limit int, tags *TagIndex) ([]*db.Post, error) {
	rows, err := p.store.Posts(ctx, store.PostSpec{Order: store.OrderNewest, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("load fresh posts: %w", err)
	}

	posts := make([]*db.Post, len(rows))
	for i := range rows {
		posts[i] = &rows[i]
	}

	if err := p.annotate(ctx, posts, tags); err != nil {
		return nil, err
	}
	return posts, nil
}

// FetchPopularPostBySlug looks a post up among posts with at least one like. A slug
// that exists but has never been liked is reported as ErrPostNotFound.
func (p *Planner) FetchPopularPostBySlug(ctx context.Context, slug string) (*db.Post, error) {
	if slug == "" {
		return nil, ErrPostNotFound
	}

	ranks, err := p.store.RankPosts(ctx, store.PostSpec{Slug: slug, PopularOnly: true, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("rank post %q: %w", slug, err)
	}
	posts, err := p.loadRankedPosts(ctx, ranks)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrPostNotFound
	}
	return posts[0], nil
}

// FetchPostsWithCommentsCount sets CommentsCount on every post using a single grouped
// query.
func (p *Planner) FetchPostsWithCommentsCount(ctx context.Context, posts []*db.Post) error {
	counts, err := p.store.CommentCounts(ctx, postIDs(posts))
	if err != nil {
		return fmt.Errorf("count comments: %w", err)
	}
	for _, post := range posts {
		post.CommentsCount = counts[post.ID]
	}
	return nil
}

// AttachTags replaces each post's Tags with the shared tag objects of the index,
// ordered by tag popularity. Tags absent from the index are dropped.
func (p *Planner) AttachTags(ctx context.Context, posts []*db.Post, tags *TagIndex) error {
	links, err := p.store.PostTagLinks(ctx, postIDs(posts))
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}

	byPost := make(map[uint][]*db.Tag, len(posts))
	for _, link := range links {
		if tag, ok := tags.Lookup(link.TagID); ok {
			byPost[link.PostID] = append(byPost[link.PostID], tag)
		}
	}

	for _, post := range posts {
		attached := byPost[post.ID]
		if attached == nil {
			attached = []*db.Tag{}
		}
		tags.sortByRank(attached)
		post.Tags = attached
	}
	return nil
}

// FetchComments returns the comments of a post with their authors.
func (p *Planner) FetchComments(ctx context.Context, post *db.Post) ([]db.Comment, error) {
	comments, err := p.store.Comments(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("load comments of post %d: %w", post.ID, err)
	}
	return comments, nil
}

func (p *Planner) fetchRankedPosts(ctx context.Context, spec store.PostSpec, tags *TagIndex) ([]*db.Post, error) {
	ranks, err := p.store.RankPosts(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("rank posts: %w", err)
	}
	posts, err := p.loadRankedPosts(ctx, ranks)
	if err != nil {
		return nil, err
	}
	if err := p.annotate(ctx, posts, tags); err != nil {
		return nil, err
	}
	return posts, nil
}

func (p *Planner) annotate(ctx context.Context, posts []*db.Post, tags *TagIndex) error {
	if len(posts) == 0 {
		return nil
	}
	if err := p.FetchPostsWithCommentsCount(ctx, posts); err != nil {
		return err
	}
	return p.AttachTags(ctx, posts, tags)
}

// loadRankedPosts fetches the base rows of ranked ids and returns them in rank order
// with LikesCount set from the rank.
func (p *Planner) loadRankedPosts(ctx context.Context, ranks []store.Count) ([]*db.Post, error) {
	if len(ranks) == 0 {
		return []*db.Post{}, nil
	}

	rows, err := p.store.Posts(ctx, store.PostSpec{IDs: rankIDs(ranks)})
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}

	byID := make(map[uint]*db.Post, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	posts := make([]*db.Post, 0, len(ranks))
	for _, rank := range ranks {
		post, ok := byID[rank.ID]
		if !ok {
			continue
		}
		post.LikesCount = rank.Total
		posts = append(posts, post)
	}
	return posts, nil
}

func (p *Planner) loadRankedTags(ctx context.Context, ranks []store.Count) ([]*db.Tag, error) {
	if len(ranks) == 0 {
		return []*db.Tag{}, nil
	}

	rows, err := p.store.Tags(ctx, rankIDs(ranks))
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	byID := make(map[uint]*db.Tag, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	tags := make([]*db.Tag, 0, len(ranks))
	for _, rank := range ranks {
		tag, ok := byID[rank.ID]
		if !ok {
			continue
		}
		tag.PostsCount = rank.Total
		tags = append(tags, tag)
	}
	return tags, nil
}

func postIDs(posts []*db.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}
	return ids
}

func rankIDs(ranks []store.Count) []uint {
	ids := make([]uint, 0, len(ranks))
	for _, rank := range ranks {
		ids = append(ids, rank.ID)
	}
	return ids
}

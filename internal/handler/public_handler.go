package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sensive/internal/db"
	"github.com/sensive/internal/service"
)

type slugURI struct {
	Slug string `uri:"slug" binding:"required"`
}

type tagURI struct {
	Title string `uri:"title" binding:"required"`
}

// sidebar 是详情页与标签页共用的热门标签与热门文章。
type sidebar struct {
	tags  []*db.Tag
	index *service.TagIndex
	posts []*db.Post
}

// ShowHome renders the most popular posts, the newest posts and the most popular tags.
func (a *API) ShowHome(c *gin.Context) {
	ctx := c.Request.Context()

	side, err := a.loadSidebar(ctx)
	if err != nil {
		a.fail(c, err)
		return
	}

	fresh, err := a.planner.FetchFreshPosts(ctx, homePostsLimit, side.index)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.render(c, http.StatusOK, "index.html", gin.H{
		"most_popular_posts": a.serializer.Posts(side.posts),
		"page_posts":         a.serializer.Posts(fresh),
		"popular_tags":       a.serializer.Tags(side.tags),
	})
}

// ShowPostDetail renders one popular post with its comments, likes and tags.
func (a *API) ShowPostDetail(c *gin.Context) {
	var uri slugURI
	if err := c.ShouldBindUri(&uri); err != nil {
		a.fail(c, service.ErrPostNotFound)
		return
	}

	ctx := c.Request.Context()

	post, err := a.planner.FetchPopularPostBySlug(ctx, uri.Slug)
	if err != nil {
		a.fail(c, err)
		return
	}

	comments, err := a.planner.FetchComments(ctx, post)
	if err != nil {
		a.fail(c, err)
		return
	}

	related, err := a.planner.FetchRelatedTags(ctx, post)
	if err != nil {
		a.fail(c, err)
		return
	}

	side, err := a.loadSidebar(ctx)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.render(c, http.StatusOK, "post-details.html", gin.H{
		"post":               a.serializer.PostDetail(post, comments, related),
		"popular_tags":       a.serializer.Tags(side.tags),
		"most_popular_posts": a.serializer.Posts(side.posts),
	})
}

// ShowTagFilter lists the most popular posts carrying a popular tag.
func (a *API) ShowTagFilter(c *gin.Context) {
	var uri tagURI
	if err := c.ShouldBindUri(&uri); err != nil {
		a.fail(c, service.ErrTagNotFound)
		return
	}

	ctx := c.Request.Context()

	tag, err := a.planner.FetchPopularTagByTitle(ctx, uri.Title)
	if err != nil {
		a.fail(c, err)
		return
	}

	side, err := a.loadSidebar(ctx)
	if err != nil {
		a.fail(c, err)
		return
	}

	related, err := a.planner.FetchTagPosts(ctx, tag, tagPostsLimit, side.index)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.render(c, http.StatusOK, "posts-list.html", gin.H{
		"tag":                tag.Title,
		"popular_tags":       a.serializer.Tags(side.tags),
		"posts":              a.serializer.Posts(related),
		"most_popular_posts": a.serializer.Posts(side.posts),
	})
}

// ShowContacts renders the static contacts page.
// TODO: record page visits and feedback submissions once a feedback table exists.
func (a *API) ShowContacts(c *gin.Context) {
	a.render(c, http.StatusOK, "contacts.html", gin.H{})
}

// loadSidebar 计算一次热门标签并复用其索引为热门文章挂载标签。
func (a *API) loadSidebar(ctx context.Context) (sidebar, error) {
	tags, err := a.planner.FetchPopularTags(ctx)
	if err != nil {
		return sidebar{}, err
	}
	index := service.NewTagIndex(tags)

	posts, err := a.planner.FetchPopularPosts(ctx, sidebarPosts, index)
	if err != nil {
		return sidebar{}, err
	}

	top := tags
	if len(top) > popularTagsLimit {
		top = top[:popularTagsLimit]
	}

	return sidebar{tags: top, index: index, posts: posts}, nil
}

package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sensive/internal/config"
	"github.com/sensive/internal/db"
	"github.com/sensive/internal/handler"
	"github.com/sensive/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ginOnce sync.Once

type tagJSON struct {
	Title      string `json:"title"`
	PostsCount int64  `json:"postsCount"`
}

type postJSON struct {
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	TeaserText    string    `json:"teaserText"`
	AuthorName    string    `json:"authorName"`
	CommentsCount int64     `json:"commentsCount"`
	ImageURL      *string   `json:"imageUrl"`
	FirstTagTitle *string   `json:"firstTagTitle"`
	Tags          []tagJSON `json:"tags"`
}

type homeJSON struct {
	MostPopularPosts []postJSON `json:"most_popular_posts"`
	PagePosts        []postJSON `json:"page_posts"`
	PopularTags      []tagJSON  `json:"popular_tags"`
}

type detailJSON struct {
	Post struct {
		Title         string `json:"title"`
		HTML          string `json:"html"`
		AuthorName    string `json:"authorName"`
		LikesCount    int64  `json:"likesCount"`
		CommentsCount int    `json:"commentsCount"`
		Comments      []struct {
			Text       string `json:"text"`
			AuthorName string `json:"authorName"`
		} `json:"comments"`
		Tags []tagJSON `json:"tags"`
	} `json:"post"`
	PopularTags      []tagJSON  `json:"popular_tags"`
	MostPopularPosts []postJSON `json:"most_popular_posts"`
}

type tagPageJSON struct {
	Tag              string     `json:"tag"`
	Posts            []postJSON `json:"posts"`
	PopularTags      []tagJSON  `json:"popular_tags"`
	MostPopularPosts []postJSON `json:"most_popular_posts"`
}

type blogFixture struct {
	db     *gorm.DB
	router *gin.Engine
	author db.User
}

func setupBlogTest(t *testing.T) *blogFixture {
	t.Helper()

	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	dsn := fmt.Sprintf("file:public-handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "open test database")
	require.NoError(t, db.Migrate(gdb), "migrate test database")
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	author := db.User{Username: "tester", Password: "hashed"}
	require.NoError(t, gdb.Create(&author).Error)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.AppConfig{MediaURLPath: "/media", MetricsPath: "/metrics"}
	api := handler.NewAPI(gdb, cfg.MediaURLPath, log)

	return &blogFixture{db: gdb, router: router.SetupRouter(cfg, api, log), author: author}
}

func (f *blogFixture) tag(t *testing.T, title string) *db.Tag {
	t.Helper()
	tag := &db.Tag{Title: title}
	require.NoError(t, f.db.Create(tag).Error)
	return tag
}

func (f *blogFixture) post(t *testing.T, slug string, publishedAt time.Time, likes, comments int, tags ...*db.Tag) *db.Post {
	t.Helper()
	post := &db.Post{
		Title:       "Title " + slug,
		Text:        "**Body** of " + slug,
		Slug:        slug,
		AuthorID:    f.author.ID,
		PublishedAt: publishedAt,
		Tags:        tags,
	}
	require.NoError(t, f.db.Create(post).Error)
	for i := 0; i < likes; i++ {
		require.NoError(t, f.db.Create(&db.Like{PostID: post.ID, AuthorID: uint(100 + i)}).Error)
	}
	for i := 0; i < comments; i++ {
		comment := db.Comment{Text: fmt.Sprintf("comment %d", i), PostID: post.ID, AuthorID: f.author.ID, PublishedAt: publishedAt.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, f.db.Create(&comment).Error)
	}
	return post
}

func (f *blogFixture) get(path string, jsonAccept bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if jsonAccept {
		req.Header.Set("Accept", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHomeAttachesCountsAndSharedTags(t *testing.T) {
	f := setupBlogTest(t)
	life := f.tag(t, "life")
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	f.post(t, "p1", base, 1, 0, life)
	f.post(t, "p2", base.Add(time.Hour), 2, 2, life)
	f.post(t, "p3", base.Add(2*time.Hour), 3, 5, life)

	rec := f.get("/", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body homeJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.PagePosts, 3)
	assert.Equal(t, []string{"p3", "p2", "p1"}, slugs(body.PagePosts), "fresh posts newest first")

	expected := map[string]int64{"p1": 0, "p2": 2, "p3": 5}
	for _, post := range body.PagePosts {
		assert.Equal(t, expected[post.Slug], post.CommentsCount, "comments of %s", post.Slug)
		require.Len(t, post.Tags, 1)
		assert.Equal(t, tagJSON{Title: "life", PostsCount: 3}, post.Tags[0])
		require.NotNil(t, post.FirstTagTitle)
		assert.Equal(t, "life", *post.FirstTagTitle)
		assert.Nil(t, post.ImageURL)
		assert.Equal(t, "tester", post.AuthorName)
	}

	assert.Equal(t, []string{"p3", "p2", "p1"}, slugs(body.MostPopularPosts), "popular posts by likes")
	assert.Equal(t, []tagJSON{{Title: "life", PostsCount: 3}}, body.PopularTags)
}

func TestHomeLimitsListsToFive(t *testing.T) {
	f := setupBlogTest(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		tag := f.tag(t, fmt.Sprintf("tag-%d", i))
		f.post(t, fmt.Sprintf("post-%d", i), base.AddDate(0, 0, i), i, 0, tag)
	}

	rec := f.get("/", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var body homeJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.PagePosts, 5)
	assert.Len(t, body.MostPopularPosts, 5)
	assert.Len(t, body.PopularTags, 5)
	assert.Equal(t, "post-6", body.MostPopularPosts[0].Slug)
}

func TestHomeRendersHTML(t *testing.T) {
	f := setupBlogTest(t)
	f.post(t, "hello", time.Now(), 1, 0, f.tag(t, "life"))

	rec := f.get("/", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Title hello")
	assert.Contains(t, rec.Body.String(), `href="/post/hello"`)
	assert.Contains(t, rec.Body.String(), `href="/tag/life"`)
}

func TestHomeWithoutPosts(t *testing.T) {
	f := setupBlogTest(t)

	rec := f.get("/", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var body homeJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.PagePosts)
	assert.Empty(t, body.MostPopularPosts)
	assert.Empty(t, body.PopularTags)
}

func TestPostDetail(t *testing.T) {
	f := setupBlogTest(t)
	life := f.tag(t, "life")
	code := f.tag(t, "code")
	f.post(t, "other", time.Now(), 0, 0, life)
	f.post(t, "liked", time.Now(), 2, 3, code, life)

	rec := f.get("/post/liked", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body detailJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Title liked", body.Post.Title)
	assert.Equal(t, int64(2), body.Post.LikesCount)
	assert.Equal(t, 3, body.Post.CommentsCount)
	require.Len(t, body.Post.Comments, 3)
	assert.Equal(t, "comment 0", body.Post.Comments[0].Text)
	assert.Contains(t, body.Post.HTML, "<strong>Body</strong>")
	assert.Equal(t, []tagJSON{{Title: "life", PostsCount: 2}, {Title: "code", PostsCount: 1}}, body.Post.Tags)
	assert.Len(t, body.PopularTags, 2)
	assert.Equal(t, "liked", body.MostPopularPosts[0].Slug)

	html := f.get("/post/liked", false)
	require.Equal(t, http.StatusOK, html.Code)
	assert.Contains(t, html.Body.String(), "<h1>Title liked</h1>")
	assert.Contains(t, html.Body.String(), "<strong>Body</strong>")
}

func TestPostDetailNotFound(t *testing.T) {
	f := setupBlogTest(t)
	f.post(t, "unliked", time.Now(), 0, 1)

	for _, path := range []string{"/post/unliked", "/post/missing"} {
		rec := f.get(path, true)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body["error"])
	}

	html := f.get("/post/unliked", false)
	assert.Equal(t, http.StatusNotFound, html.Code)
	assert.Contains(t, html.Body.String(), "404")
}

func TestTagFilter(t *testing.T) {
	f := setupBlogTest(t)
	life := f.tag(t, "life")
	code := f.tag(t, "code")
	f.post(t, "a", time.Now(), 1, 0, life)
	f.post(t, "b", time.Now(), 4, 1, life, code)
	f.post(t, "c", time.Now(), 9, 0, code)

	rec := f.get("/tag/life", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body tagPageJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "life", body.Tag)
	assert.Equal(t, []string{"b", "a"}, slugs(body.Posts))
	assert.Equal(t, int64(1), body.Posts[0].CommentsCount)
	assert.Equal(t, []string{"c", "b", "a"}, slugs(body.MostPopularPosts))
	assert.Len(t, body.PopularTags, 2)

	html := f.get("/tag/life", false)
	require.Equal(t, http.StatusOK, html.Code)
	assert.Contains(t, html.Body.String(), "Title b")
}

func TestTagFilterNotFound(t *testing.T) {
	f := setupBlogTest(t)
	f.tag(t, "orphan")

	for _, path := range []string{"/tag/orphan", "/tag/missing"} {
		rec := f.get(path, true)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestContacts(t *testing.T) {
	f := setupBlogTest(t)

	rec := f.get("/contacts", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	html := f.get("/contacts", false)
	require.Equal(t, http.StatusOK, html.Code)
	assert.True(t, strings.Contains(html.Body.String(), "<svg"), "contacts page renders channel icons")
}

func slugs(posts []postJSON) []string {
	out := make([]string, 0, len(posts))
	for _, post := range posts {
		out = append(out, post.Slug)
	}
	return out
}

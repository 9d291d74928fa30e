package view

import (
	"html/template"
	"strings"
	"time"

	"github.com/sensive/internal/db"
)

// TeaserLength 是文章预览截取的字符数（按 rune 计）。
const TeaserLength = 200

// TagView is the template projection of a tag.
type TagView struct {
	Title      string `json:"title"`
	PostsCount int64  `json:"postsCount"`
}

// PostView is the template projection of a post in a list.
type PostView struct {
	Title         string    `json:"title"`
	TeaserText    string    `json:"teaserText"`
	AuthorName    string    `json:"authorName"`
	CommentsCount int64     `json:"commentsCount"`
	ImageURL      *string   `json:"imageUrl"`
	PublishedAt   time.Time `json:"publishedAt"`
	Slug          string    `json:"slug"`
	Tags          []TagView `json:"tags"`
	// FirstTagTitle is nil for a post without tags.
	FirstTagTitle *string `json:"firstTagTitle"`
}

// CommentView is the template projection of a comment.
type CommentView struct {
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"publishedAt"`
	AuthorName  string    `json:"authorName"`
}

// PostDetailView is the template projection of a single post page.
type PostDetailView struct {
	Title         string        `json:"title"`
	Text          string        `json:"text"`
	HTML          template.HTML `json:"html"`
	AuthorName    string        `json:"authorName"`
	Comments      []CommentView `json:"comments"`
	CommentsCount int           `json:"commentsCount"`
	LikesCount    int64         `json:"likesCount"`
	ImageURL      *string       `json:"imageUrl"`
	PublishedAt   time.Time     `json:"publishedAt"`
	Slug          string        `json:"slug"`
	Tags          []TagView     `json:"tags"`
}

// Serializer flattens entities into views. It performs no I/O: every count it reads
// must already be attached to the entity.
type Serializer struct {
	mediaURL string
}

// NewSerializer creates a Serializer resolving image paths under mediaURL.
func NewSerializer(mediaURL string) *Serializer {
	return &Serializer{mediaURL: strings.TrimRight(strings.TrimSpace(mediaURL), "/")}
}

// Post serializes a post for list rendering.
func (s *Serializer) Post(post *db.Post) PostView {
	view := PostView{
		Title:         post.Title,
		TeaserText:    Teaser(post.Text),
		AuthorName:    post.Author.Username,
		CommentsCount: post.CommentsCount,
		ImageURL:      s.imageURL(post),
		PublishedAt:   post.PublishedAt,
		Slug:          post.Slug,
		Tags:          s.Tags(post.Tags),
	}
	if len(post.Tags) > 0 {
		title := post.Tags[0].Title
		view.FirstTagTitle = &title
	}
	return view
}

// Posts serializes a list of posts, preserving order.
func (s *Serializer) Posts(posts []*db.Post) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, s.Post(post))
	}
	return views
}

// Tag serializes a tag.
func (s *Serializer) Tag(tag *db.Tag) TagView {
	return TagView{Title: tag.Title, PostsCount: tag.PostsCount}
}

// Tags serializes a list of tags, preserving order.
func (s *Serializer) Tags(tags []*db.Tag) []TagView {
	views := make([]TagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, s.Tag(tag))
	}
	return views
}

// Comment serializes a comment.
func (s *Serializer) Comment(comment *db.Comment) CommentView {
	return CommentView{
		Text:        comment.Text,
		PublishedAt: comment.PublishedAt,
		AuthorName:  comment.Author.Username,
	}
}

// PostDetail serializes the post shown on its own page. The body is rendered from
// markdown; a rendering failure leaves HTML empty and the raw Text still available.
func (s *Serializer) PostDetail(post *db.Post, comments []db.Comment, tags []*db.Tag) PostDetailView {
	serializedComments := make([]CommentView, 0, len(comments))
	for i := range comments {
		serializedComments = append(serializedComments, s.Comment(&comments[i]))
	}

	html, err := RenderMarkdown(post.Text)
	if err != nil {
		html = ""
	}

	return PostDetailView{
		Title:         post.Title,
		Text:          post.Text,
		HTML:          html,
		AuthorName:    post.Author.Username,
		Comments:      serializedComments,
		CommentsCount: len(serializedComments),
		LikesCount:    post.LikesCount,
		ImageURL:      s.imageURL(post),
		PublishedAt:   post.PublishedAt,
		Slug:          post.Slug,
		Tags:          s.Tags(tags),
	}
}

// Teaser returns the first TeaserLength characters of text.
func Teaser(text string) string {
	runes := []rune(text)
	if len(runes) <= TeaserLength {
		return text
	}
	return string(runes[:TeaserLength])
}

func (s *Serializer) imageURL(post *db.Post) *string {
	if !post.HasImage() {
		return nil
	}

	path := strings.TrimSpace(post.ImagePath)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return &path
	}

	url := s.mediaURL + "/" + strings.TrimLeft(path, "/")
	return &url
}

package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/sensive/internal/db"
	"gorm.io/gorm"
)

// Result 汇总一次生成的数据量。
type Result struct {
	Users    int
	Tags     int
	Posts    int
	Comments int
	Likes    int
}

type samplePost struct {
	title    string
	text     string
	tags     []string
	image    string
	comments []string
	likes    int
	daysAgo  int
}

var (
	sampleUsers = []string{"admin", "olga", "pavel", "marina", "timur"}
	sampleTags  = []string{"life", "travel", "coding", "books", "photo", "food"}

	samplePosts = []samplePost{
		{
			title:    "A Week in the Mountains",
			text:     "We left the city before dawn and drove north until the road gave up. The next seven days were about rain, fog and the occasional view that made every wet sock worth it. This post collects notes from the trail, the gear that survived and the gear that did not.",
			tags:     []string{"travel", "life", "photo"},
			image:    "mountains.jpg",
			comments: []string{"Beautiful photos!", "Which trail was this?", "Adding it to my list."},
			likes:    4,
			daysAgo:  2,
		},
		{
			title:    "Why I Still Write Plain SQL",
			text:     "Query builders are convenient until you need to know exactly how many round trips a page costs. Counting comments for a list of posts should be one grouped query, not one query per post.",
			tags:     []string{"coding", "life"},
			comments: []string{"Strong agree.", "ORMs have their place though."},
			likes:    5,
			daysAgo:  5,
		},
		{
			title:    "Books That Stayed With Me",
			text:     "Some books you finish and forget; others keep showing up in conversations years later. Here are the five that keep coming back.",
			tags:     []string{"books", "life"},
			image:    "books.jpg",
			comments: []string{"Great list."},
			likes:    2,
			daysAgo:  9,
		},
		{
			title:   "Sourdough, Attempt Number Twelve",
			text:    "The starter is finally alive and the crumb is finally open. Notes on hydration, timing and patience.",
			tags:    []string{"food"},
			likes:   1,
			daysAgo: 12,
		},
		{
			title:   "Drafting a Photo Essay",
			text:    "Sequencing matters more than any single frame. A short walk through how I pick and order images for a series.",
			tags:    []string{"photo"},
			daysAgo: 20,
		},
	}
)

// Run 生成演示用户、标签、文章、评论与点赞；已有文章时直接跳过。
func Run(ctx context.Context, gdb *gorm.DB, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	gdb = gdb.WithContext(ctx)

	var result Result

	var postCount int64
	if err := gdb.Model(&db.Post{}).Count(&postCount).Error; err != nil {
		return result, err
	}
	if postCount > 0 {
		logger.Info("posts already exist, skipping seed", slog.Int64("posts", postCount))
		return result, nil
	}

	users, err := createUsers(gdb)
	if err != nil {
		return result, fmt.Errorf("create users: %w", err)
	}
	result.Users = len(users)

	tags, err := createTags(gdb)
	if err != nil {
		return result, fmt.Errorf("create tags: %w", err)
	}
	result.Tags = len(tags)

	now := time.Now()
	err = gdb.Transaction(func(tx *gorm.DB) error {
		for i, sample := range samplePosts {
			author := users[i%len(users)]
			post := db.Post{
				Title:       sample.title,
				Text:        sample.text,
				Slug:        Slugify(sample.title),
				AuthorID:    author.ID,
				ImagePath:   sample.image,
				PublishedAt: now.AddDate(0, 0, -sample.daysAgo),
			}
			for _, name := range sample.tags {
				post.Tags = append(post.Tags, tags[name])
			}
			if err := tx.Create(&post).Error; err != nil {
				return err
			}
			result.Posts++

			for j, text := range sample.comments {
				comment := db.Comment{
					Text:        text,
					PublishedAt: post.PublishedAt.Add(time.Duration(j+1) * time.Hour),
					AuthorID:    users[(i+j+1)%len(users)].ID,
					PostID:      post.ID,
				}
				if err := tx.Create(&comment).Error; err != nil {
					return err
				}
				result.Comments++
			}

			for j := 0; j < sample.likes && j < len(users); j++ {
				like := db.Like{PostID: post.ID, AuthorID: users[j].ID}
				if err := tx.Create(&like).Error; err != nil {
					return err
				}
				result.Likes++
			}
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("create posts: %w", err)
	}

	logger.Info("seed completed",
		slog.Int("users", result.Users),
		slog.Int("tags", result.Tags),
		slog.Int("posts", result.Posts),
		slog.Int("comments", result.Comments),
		slog.Int("likes", result.Likes))
	return result, nil
}

// Slugify 将标题转换为 URL 友好的 slug。
func Slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}

func createUsers(gdb *gorm.DB) ([]*db.User, error) {
	users := make([]*db.User, 0, len(sampleUsers))
	for _, name := range sampleUsers {
		user, err := db.EnsureUser(gdb, name, name+"-password")
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createTags(gdb *gorm.DB) (map[string]*db.Tag, error) {
	tags := make(map[string]*db.Tag, len(sampleTags))
	for _, title := range sampleTags {
		tag := db.Tag{Title: title}
		if err := gdb.Where(db.Tag{Title: title}).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags[title] = &tag
	}
	return tags, nil
}

package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sensive/internal/service"
	"github.com/sensive/internal/store"
	"github.com/sensive/internal/view"
	"gorm.io/gorm"
)

const (
	homePostsLimit   = 5
	popularTagsLimit = 5
	sidebarPosts     = 5
	tagPostsLimit    = 20
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	planner    *service.Planner
	serializer *view.Serializer
	logger     *slog.Logger
}

// NewAPI constructs a handler set reading from gdb and resolving post images under
// mediaURL.
func NewAPI(gdb *gorm.DB, mediaURL string, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		planner:    service.NewPlanner(store.New(gdb)),
		serializer: view.NewSerializer(mediaURL),
		logger:     logger,
	}
}

// render 根据 Accept 头返回 JSON 上下文或渲染 HTML 模板。
func (a *API) render(c *gin.Context, status int, template string, data gin.H) {
	if wantsJSON(c) {
		c.JSON(status, data)
		return
	}

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}

	c.HTML(status, template, payload)
}

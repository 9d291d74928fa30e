package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sensive/internal/service"
)

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

func respondError(c *gin.Context, status int, message string) {
	if wantsJSON(c) {
		c.AbortWithStatusJSON(status, gin.H{"error": message})
		return
	}
	c.HTML(status, "error.html", gin.H{"status": status, "error": message, "year": time.Now().Year()})
	c.Abort()
}

// fail 将查询错误映射为 404 或 500 响应。
func (a *API) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		respondError(c, http.StatusNotFound, "文章不存在")
	case errors.Is(err, service.ErrTagNotFound):
		respondError(c, http.StatusNotFound, "标签不存在")
	default:
		_ = c.Error(err)
		a.logger.Error("failed to assemble page",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()))
		respondError(c, http.StatusInternalServerError, "页面加载失败")
	}
}

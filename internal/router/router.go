package router

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sensive/internal/config"
	"github.com/sensive/internal/handler"
	"github.com/sensive/internal/view"
	"github.com/sensive/web"
)

// SetupRouter 配置 Gin 引擎、中间件与路由
func SetupRouter(cfg config.AppConfig, api *handler.API, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(logger), Metrics())

	// 加载内嵌模板并添加自定义函数
	r.SetHTMLTemplate(loadTemplates())

	if cfg.MediaDir != "" && cfg.MediaURLPath != "" && cfg.MediaURLPath != "/" {
		r.Static(cfg.MediaURLPath, cfg.MediaDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if cfg.MetricsPath != "" {
		r.GET(cfg.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/", api.ShowHome)
	r.GET("/post/:slug", api.ShowPostDetail)
	r.GET("/tag/:title", api.ShowTagFilter)
	r.GET("/contacts", api.ShowContacts)

	return r
}

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"formatDate":  formatDate,
		"contactIcon": view.ContactIcon,
		"contacts":    view.DefaultContacts,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(web.Templates, "template/*.html"))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("2006-01-02")
}

package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sensive/internal/config"
	"github.com/sensive/internal/handler"
)

func newTestRouter(t *testing.T, cfg config.AppConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return SetupRouter(cfg, handler.NewAPI(nil, cfg.MediaURLPath, log), log)
}

func TestSetupRouterServesMedia(t *testing.T) {
	mediaDir := t.TempDir()
	fileName := "cover.txt"
	fileContent := []byte("hello media")
	if err := os.WriteFile(filepath.Join(mediaDir, fileName), fileContent, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	r := newTestRouter(t, config.AppConfig{MediaDir: mediaDir, MediaURLPath: "/media"})

	req := httptest.NewRequest(http.MethodGet, "/media/"+fileName, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != string(fileContent) {
		t.Fatalf("unexpected body, got %q", rr.Body.String())
	}
}

func TestSetupRouterSkipsRootMediaPath(t *testing.T) {
	// 挂载到根路径会与页面路由冲突，必须跳过
	r := newTestRouter(t, config.AppConfig{MediaDir: t.TempDir(), MediaURLPath: "/"})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected ping to be served, got %d", rr.Code)
	}
}

func TestPingAndRequestID(t *testing.T) {
	r := newTestRouter(t, config.AppConfig{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "pong") {
		t.Fatalf("unexpected ping response %d %q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if got := rr.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected client request id to be echoed, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, config.AppConfig{MetricsPath: "/metrics"})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `http_server_requests_total{method="GET",route="/ping",status="200"}`) {
		t.Fatalf("expected ping request to be counted, got:\n%s", body)
	}
	if !strings.Contains(body, `route="unmatched"`) {
		t.Fatal("expected unmatched route label")
	}
}

func TestMetricsEndpointDisabled(t *testing.T) {
	r := newTestRouter(t, config.AppConfig{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics path, got %d", rr.Code)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{name: "zero", input: time.Time{}, expected: ""},
		{name: "local", input: time.Date(2025, 12, 1, 12, 0, 0, 0, time.Local), expected: "2025-12-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDate(tt.input); got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTemplatesParse(t *testing.T) {
	tmpl := loadTemplates()
	for _, name := range []string{"index.html", "post-details.html", "posts-list.html", "contacts.html", "error.html"} {
		if tmpl.Lookup(name) == nil {
			t.Fatalf("template %s not loaded", name)
		}
	}
}

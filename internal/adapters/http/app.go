package http

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/melih/dockdash/internal/dashboard"
)

//go:embed views
var viewsFS embed.FS

// NewApp wires the dashboard routes, views and command endpoints.
func NewApp(h *DashboardHandler, accessLog bool) (*fiber.App, error) {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.AddFunc("isActive", dashboard.IsActive)
	engine.AddFunc("running", dashboard.IsRunning)
	engine.AddFunc("imageTag", h.imageTag)
	engine.AddFunc("shortID", shortID)

	app := fiber.New(fiber.Config{
		Views:                 engine,
		ViewsLayout:           "layouts/main",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	if accessLog {
		app.Use(logger.New())
	}

	for _, route := range dashboard.Routes {
		app.Get(route.Path, h.Page(route))
	}
	app.Post("/containers/:id/:action", h.Command)
	app.Get("/api/state", h.State)

	return app, nil
}

func shortID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

package router

import (
	"github.com/deppfellow/storefront/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts the routes that live outside /api/v1.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.GET("/metrics", h.Metrics.Serve)

	r.GET("/sitemap.xml", h.SEO.Sitemap)
	r.GET("/robots.txt", h.SEO.Robots)
}

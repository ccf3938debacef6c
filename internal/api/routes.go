package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RegisterRoutes wires the HTTP surface. Health, categories and cache stats
// are public; everything that touches user data sits behind the auth
// middleware.
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware echo.MiddlewareFunc) {
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/health", h.health)
	e.GET("/categories", h.listCategories)
	e.GET("/cache-stats", h.cacheStats)

	authed := e.Group("", authMiddleware)
	authed.POST("/news-brief", h.newsBrief)
	authed.GET("/me", h.me)
	authed.PUT("/preferences", h.updatePreferences)
	authed.DELETE("/clear-cache", h.clearCache)
	authed.POST("/admin/seed-news", h.seedNews)
}

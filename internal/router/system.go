package router

import (
	"github.com/deppfellow/training-registry/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints outside the registry itself:
// liveness, dependency health, and the API docs.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.Status)
	r.GET("/health", h.Health.CheckHealth)

	r.StaticFS("/static", h.OpenAPI.StaticFS())
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}

// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/deppfellow/training-registry/internal/handler"
	"github.com/deppfellow/training-registry/internal/middleware"
	"github.com/deppfellow/training-registry/internal/server"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// NewRouter builds the echo instance with the global middleware chain and
// every route registered.
//
// Order matters: the request id must exist before the New Relic
// transaction is enhanced, and both before the request logger is built.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	m := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = m.Global.GlobalErrorHandler

	router.Pre(echomw.RemoveTrailingSlash())

	router.Use(
		m.Global.Recover(),
		middleware.RequestID(),
		m.Tracing.NewRelicMiddleware(),
		m.Tracing.EnhanceTracing(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.CORS(),
		m.Global.Secure(),
		m.Global.RequestLogger(),
	)

	if m.RateLimit.Enabled() {
		router.Use(m.RateLimit.Limiter())
	}

	registerSystemRoutes(router, h)
	registerRegistryRoutes(router, h)

	return router
}

// registerRegistryRoutes registers the trainer and trainee routes. POST
// edits when ?id= is present, PATCH always edits.
func registerRegistryRoutes(r *echo.Echo, h *handler.Handlers) {
	trainer := r.Group("/trainer")
	trainer.GET("", h.Trainer.Get)
	trainer.POST("", h.Trainer.Post)
	trainer.PATCH("", h.Trainer.Patch)
	trainer.DELETE("", h.Trainer.Delete)

	trainee := r.Group("/trainee")
	trainee.GET("", h.Trainee.Get)
	trainee.POST("", h.Trainee.Post)
	trainee.PATCH("", h.Trainee.Patch)
	trainee.DELETE("", h.Trainee.Delete)
}

package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/training-registry/internal/middleware"
	"github.com/deppfellow/training-registry/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// HealthHandler serves the liveness endpoint /status and the dependency
// check /health.
type HealthHandler struct {
	Handler

	db      dbPinger
	redis   redisPinger // nil when Redis is not configured
	nrApp   *newrelic.Application
	env     string
	timeout time.Duration
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	h := &HealthHandler{
		Handler: NewHandler(s),
		db:      s.DB.Pool,
		nrApp:   s.LoggerService.GetApplication(),
		env:     s.Config.Primary.Env,
		timeout: s.Config.Observability.HealthChecks.Timeout,
	}
	if s.Redis != nil {
		h.redis = s.Redis
	}
	return h
}

// Status reports that the process is up. It never touches storage.
func (h *HealthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"Status": "Running"})
}

// CheckHealth pings the database and, when configured, Redis. It returns
// 200 when every check passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := map[string]interface{}{}
	isHealthy := h.check(c.Request().Context(), &logger, checks, "database", h.db.Ping)

	if h.redis != nil {
		ping := func(ctx context.Context) error { return h.redis.Ping(ctx).Err() }
		isHealthy = h.check(c.Request().Context(), &logger, checks, "redis", ping) && isHealthy
	}

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.env,
		"checks":      checks,
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordEvent(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Info().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}

// check runs one dependency ping with the configured timeout and records
// its result under name.
func (h *HealthHandler) check(ctx context.Context, logger *zerolog.Logger, checks map[string]interface{}, name string, ping func(context.Context) error) bool {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		checks[name] = map[string]interface{}{
			"status":        "unhealthy",
			"response_time": elapsed.String(),
			"error":         err.Error(),
		}

		logger.Error().
			Err(err).
			Dur("response_time", elapsed).
			Msgf("%s health check failed", name)

		h.recordEvent(map[string]interface{}{
			"check_type":       name,
			"operation":        "health_check",
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
		return false
	}

	checks[name] = map[string]interface{}{
		"status":        "healthy",
		"response_time": elapsed.String(),
	}

	logger.Debug().
		Dur("response_time", elapsed).
		Msgf("%s health check passed", name)
	return true
}

func (h *HealthHandler) recordEvent(params map[string]interface{}) {
	if h.nrApp != nil {
		h.nrApp.RecordCustomEvent("HealthCheckError", params)
	}
}

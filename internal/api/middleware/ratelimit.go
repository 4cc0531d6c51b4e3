package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hska/buch-catalog/internal/api/metrics"
	"github.com/hska/buch-catalog/internal/core/ports"
)

// LoginRateLimit throttles login attempts per client IP. When the limiter is
// unavailable the request is let through.
func LoginRateLimit(limiter ports.LoginLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Msg("login limiter unavailable")
			}
			if !allowed {
				metrics.LoginsTotal.WithLabelValues("throttled").Inc()
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many login attempts"})
			}
			return next(c)
		}
	}
}

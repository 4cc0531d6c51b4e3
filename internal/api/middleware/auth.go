package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/hska/buch-catalog/internal/core/ports"
)

// Auth validates the bearer token and binds the subject into the request
// context. Failures are returned unchanged so the error handler can answer
// them uniformly with 401.
func Auth(authService ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx, err := authService.Authenticate(req.Context(), req.Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

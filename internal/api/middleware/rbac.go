package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/ports"
	"github.com/hska/buch-catalog/internal/core/principal"
)

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(authService ports.AuthService, allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			p, ok := principal.FromContext(ctx)
			if !ok {
				return domain.ErrAuthorizationMissing
			}
			if !authService.HasAnyRole(ctx, p.SubjectID, allowedRoles...) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

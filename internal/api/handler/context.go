package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/principal"
)

// subject returns the subject id bound by the Auth middleware. Its absence
// means the route was registered without Auth and is treated like a missing
// header.
func subject(c echo.Context) (string, error) {
	p, ok := principal.FromContext(c.Request().Context())
	if !ok {
		return "", domain.ErrAuthorizationMissing
	}
	return p.SubjectID, nil
}

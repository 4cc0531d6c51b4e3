package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/principal"
)

func authenticatedContext(e *echo.Echo, rec *httptest.ResponseRecorder, subjectID string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(principal.WithPrincipal(req.Context(), principal.Principal{SubjectID: subjectID}))
	return e.NewContext(req, rec)
}

func TestRBAC_Allows(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := authenticatedContext(e, rec, "u-1")

	called := false
	mw := RBAC(&stubAuthService{roles: []string{domain.RoleMitarbeiter}}, domain.RoleAdmin, domain.RoleMitarbeiter)
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Forbids(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := authenticatedContext(e, rec, "u-1")

	mw := RBAC(&stubAuthService{roles: []string{domain.RoleKunde}}, domain.RoleAdmin)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRBAC_WithoutPrincipal(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	mw := RBAC(&stubAuthService{roles: []string{domain.RoleAdmin}}, domain.RoleAdmin)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrAuthorizationMissing) {
		t.Fatalf("expected ErrAuthorizationMissing, got %v", err)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hska/buch-catalog/internal/core/domain"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, username, password string) (*domain.LoginResult, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Validate(context.Context, string) (string, error) {
	return "", domain.ErrAuthorizationMissing
}

func (s *stubAuthService) Authenticate(ctx context.Context, _ string) (context.Context, error) {
	return ctx, domain.ErrAuthorizationMissing
}

func (s *stubAuthService) HasAnyRole(context.Context, string, ...string) bool { return false }

func newLoginRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.LoginResult, error) {
			if username != "admin" || password != "p" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.LoginResult{
				Token:     "token123",
				TokenType: domain.TokenTypeBearer,
				ExpiresIn: 3600,
				Roles:     []string{"admin", "mitarbeiter"},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(newLoginRequest(url.Values{"username": {"admin"}, "password": {"p"}}), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || resp["token_type"] != "Bearer" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["expires_in"] != float64(3600) {
		t.Fatalf("expected expires_in 3600, got %v", resp["expires_in"])
	}
	if rec.Header().Get(headerCacheControl) != "no-store" {
		t.Fatalf("token response must not be cached")
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(newLoginRequest(url.Values{"username": {"admin"}, "password": {"bad"}}), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_StoreFailure(t *testing.T) {
	e := echo.New()
	storeErr := errors.New("mongo down")
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.LoginResult, error) {
			return nil, storeErr
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(newLoginRequest(url.Values{"username": {"admin"}, "password": {"p"}}), rec)

	if err := handler.Login(c); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.LoginResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/hska/buch-catalog/docs"
	"github.com/hska/buch-catalog/internal/api/handler"
	"github.com/hska/buch-catalog/internal/api/middleware"
	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/ports"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Log          zerolog.Logger
	AuthService  ports.AuthService
	BuchService  ports.BuchService
	MediaService ports.MediaService
	LoginLimiter ports.LoginLimiter
	// Checks back the readiness probe.
	Checks []handler.DependencyCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echoprometheus.NewMiddleware("buch"))

	authn := middleware.Auth(d.AuthService)
	writers := middleware.RBAC(d.AuthService, domain.RoleAdmin, domain.RoleMitarbeiter)
	admins := middleware.RBAC(d.AuthService, domain.RoleAdmin)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	login := []echo.MiddlewareFunc{}
	if d.LoginLimiter != nil {
		login = append(login, middleware.LoginRateLimit(d.LoginLimiter, d.Log))
	}
	e.POST("/login", authHandler.Login, login...)

	// --- Catalog routes ---
	buchHandler := handler.NewBuchHandler(d.BuchService, d.Log)
	mediaHandler := handler.NewMediaHandler(d.MediaService)

	buecher := e.Group("/buecher")
	buecher.GET("", buchHandler.Find)
	buecher.GET("/:id", buchHandler.FindByID)
	buecher.POST("", buchHandler.Create, authn, writers)
	buecher.PUT("/:id", buchHandler.Update, authn, writers)
	buecher.DELETE("/:id", buchHandler.Delete, authn, admins)
	buecher.GET("/:id/media", mediaHandler.Download)
	buecher.PUT("/:id/media", mediaHandler.Upload, authn, writers)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hska/buch-catalog/internal/api/metrics"
	"github.com/hska/buch-catalog/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Fields is
// only set for validation failures.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: ve.Fields}
	}

	// Every token validation failure looks the same to the client.
	if domain.IsAuthError(err) {
		reason := domain.AuthErrorReason(err)
		metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
		log.Debug().Str("reason", reason).Str("path", c.Path()).Msg("request not authenticated")
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="buch"`)
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized"}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrBuchNotFound):
		return http.StatusNotFound, errorResponse{Error: "buch not found"}
	case errors.Is(err, domain.ErrMediaNotFound):
		return http.StatusNotFound, errorResponse{Error: "media not found"}
	case errors.Is(err, domain.ErrTitelExists):
		return http.StatusBadRequest, errorResponse{Error: "title already exists"}
	case errors.Is(err, domain.ErrVersionMissing):
		return http.StatusPreconditionRequired, errorResponse{Error: "If-Match header with the version is required"}
	case errors.Is(err, domain.ErrVersionInvalid):
		return http.StatusPreconditionFailed, errorResponse{Error: "version must be a non-negative integer"}
	case errors.Is(err, domain.ErrVersionConflict):
		metrics.UpdateConflictsTotal.Inc()
		return http.StatusPreconditionFailed, errorResponse{Error: "buch was changed or does not exist"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

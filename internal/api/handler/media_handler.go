package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hska/buch-catalog/internal/core/ports"
)

const defaultMediaType = "application/octet-stream"

// MediaHandler uploads and serves the binary attachment of a buch.
type MediaHandler struct {
	service ports.MediaService
}

func NewMediaHandler(service ports.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

// Upload handles PUT /buecher/:id/media.
//
// @Summary      Upload the attachment of a buch
// @Tags         media
// @Accept       multipart/form-data
// @Security     BearerAuth
// @Param        id    path      string  true  "Buch id (UUID)"
// @Param        file  formData  file    true  "Attachment"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /buecher/{id}/media [put]
func (h *MediaHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field \"file\" is required")
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer f.Close()

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = defaultMediaType
	}

	if err := h.service.Upload(c.Request().Context(), c.Param("id"), contentType, f); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Download handles GET /buecher/:id/media.
//
// @Summary      Download the attachment of a buch
// @Tags         media
// @Produce      octet-stream
// @Param        id   path  string  true  "Buch id (UUID)"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /buecher/{id}/media [get]
func (h *MediaHandler) Download(c echo.Context) error {
	media, err := h.service.Download(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	defer media.Body.Close()

	contentType := media.ContentType
	if contentType == "" {
		contentType = defaultMediaType
	}
	if media.Length > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(media.Length, 10))
	}
	return c.Stream(http.StatusOK, contentType, media.Body)
}

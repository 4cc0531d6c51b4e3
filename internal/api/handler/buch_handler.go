package handler

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hska/buch-catalog/internal/api/metrics"
	"github.com/hska/buch-catalog/internal/core/ports"
)

// BuchHandler handles HTTP requests for the buch catalog.
type BuchHandler struct {
	service ports.BuchService
	log     zerolog.Logger
}

func NewBuchHandler(service ports.BuchService, log zerolog.Logger) *BuchHandler {
	return &BuchHandler{service: service, log: log}
}

// Find handles GET /buecher.
//
// @Summary      Search buecher
// @Tags         buecher
// @Produce      json
// @Param        title      query     string    false  "Case-insensitive part of the title"
// @Param        kind       query     string    false  "KINDLE or PRINT"
// @Param        publisher  query     string    false  "PUBLISHER_A or PUBLISHER_B"
// @Param        keyword    query     []string  false  "Keywords that must all be present"
// @Success      200        {array}   buchResponse
// @Failure      400        {object}  map[string]string
// @Router       /buecher [get]
func (h *BuchHandler) Find(c echo.Context) error {
	var q searchQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	buecher, err := h.service.Find(c.Request().Context(), q.toFilter())
	if err != nil {
		return err
	}

	items := make([]buchResponse, 0, len(buecher))
	for _, b := range buecher {
		items = append(items, toBuchResponse(b))
	}
	return c.JSON(http.StatusOK, items)
}

// FindByID handles GET /buecher/:id.
//
// @Summary      Get a buch by id
// @Tags         buecher
// @Produce      json
// @Param        id             path      string  true   "Buch id (UUID)"
// @Param        If-None-Match  header    string  false  "Version last seen, e.g. \"0\""
// @Success      200            {object}  buchResponse
// @Success      304
// @Failure      404            {object}  map[string]string
// @Router       /buecher/{id} [get]
func (h *BuchHandler) FindByID(c echo.Context) error {
	b, err := h.service.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	tag := etag(b.Version)
	c.Response().Header().Set(headerETag, tag)
	if inm := c.Request().Header.Get(headerIfNoneMatch); inm != "" && matchesETag(inm, tag) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, toBuchResponse(b))
}

// Create handles POST /buecher.
//
// @Summary      Create a buch
// @Tags         buecher
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      buchRequest  true  "New buch"
// @Success      201
// @Header       201   {string}  Location  "URI of the new buch"
// @Header       201   {string}  ETag      "Version of the new buch"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      415   {object}  map[string]string
// @Router       /buecher [post]
func (h *BuchHandler) Create(c echo.Context) error {
	if !isJSON(c.Request()) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "content type must be application/json")
	}

	var req buchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	created, err := h.service.Create(c.Request().Context(), req.toDomain(""))
	if err != nil {
		return err
	}

	metrics.BuecherCreatedTotal.WithLabelValues(string(created.Kind)).Inc()
	h.logAction(c, "buch created", created.ID)

	c.Response().Header().Set(echo.HeaderLocation, c.Scheme()+"://"+c.Request().Host+buchPath(created.ID))
	c.Response().Header().Set(headerETag, etag(created.Version))
	return c.NoContent(http.StatusCreated)
}

// Update handles PUT /buecher/:id.
//
// @Summary      Replace a buch
// @Tags         buecher
// @Accept       json
// @Security     BearerAuth
// @Param        id        path      string       true  "Buch id (UUID)"
// @Param        If-Match  header    string       true  "Version last seen, e.g. \"0\""
// @Param        body      body      buchRequest  true  "Buch data"
// @Success      204
// @Header       204       {string}  ETag  "New version"
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Failure      412       {object}  map[string]string
// @Failure      428       {object}  map[string]string
// @Router       /buecher/{id} [put]
func (h *BuchHandler) Update(c echo.Context) error {
	if !isJSON(c.Request()) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "content type must be application/json")
	}

	var req buchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	version := versionFromIfMatch(c.Request().Header.Values(headerIfMatch))
	updated, err := h.service.Update(c.Request().Context(), req.toDomain(c.Param("id")), version)
	if err != nil {
		return err
	}

	h.logAction(c, "buch updated", updated.ID)
	c.Response().Header().Set(headerETag, etag(updated.Version))
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /buecher/:id. Deleting an unknown id succeeds.
//
// @Summary      Delete a buch
// @Tags         buecher
// @Security     BearerAuth
// @Param        id   path  string  true  "Buch id (UUID)"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /buecher/{id} [delete]
func (h *BuchHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.service.Remove(c.Request().Context(), id); err != nil {
		return err
	}
	h.logAction(c, "buch deleted", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *BuchHandler) logAction(c echo.Context, msg, id string) {
	sub, err := subject(c)
	if err != nil {
		sub = "anonymous"
	}
	h.log.Info().Str("buch_id", id).Str("subject", sub).Msg(msg)
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get(echo.HeaderContentType))
	return err == nil && mt == echo.MIMEApplicationJSON
}

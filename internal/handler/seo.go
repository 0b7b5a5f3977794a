package handler

import (
	"net/http"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

type SEOHandler struct {
	Handler
	seo *service.SEOService
}

func (h *SEOHandler) Sitemap(c echo.Context) error {
	return HandleBlob(h.Handler, func(c echo.Context, req *model.SitemapRequest) ([]byte, error) {
		return h.seo.Sitemap(c.Request().Context())
	}, http.StatusOK, &model.SitemapRequest{}, echo.MIMEApplicationXMLCharsetUTF8)(c)
}

func (h *SEOHandler) Robots(c echo.Context) error {
	return HandleBlob(h.Handler, func(c echo.Context, req *model.RobotsRequest) ([]byte, error) {
		return []byte(h.seo.Robots()), nil
	}, http.StatusOK, &model.RobotsRequest{}, echo.MIMETextPlainCharsetUTF8)(c)
}

func (h *SEOHandler) ProductMeta(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.ProductMetaRequest) (*model.PageMeta, error) {
		return h.seo.ProductMeta(c.Request().Context(), req.Slug)
	}, http.StatusOK, &model.ProductMetaRequest{})(c)
}

func (h *SEOHandler) CategoryMeta(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.CategoryMetaRequest) (*model.PageMeta, error) {
		return h.seo.CategoryMeta(c.Request().Context(), req.Category)
	}, http.StatusOK, &model.CategoryMetaRequest{})(c)
}

package handler

import (
	"net/http"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	Handler
	catalog *service.CatalogService
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.ListProductsRequest) (model.Paginated[model.Product], error) {
		return h.catalog.ListProducts(c.Request().Context(), req)
	}, http.StatusOK, &model.ListProductsRequest{})(c)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.GetProductRequest) (*model.Product, error) {
		return h.catalog.GetProduct(c.Request().Context(), req.Slug)
	}, http.StatusOK, &model.GetProductRequest{})(c)
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.ListCategoriesRequest) ([]model.CategoryCount, error) {
		return h.catalog.ListCategories(c.Request().Context())
	}, http.StatusOK, &model.ListCategoriesRequest{})(c)
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.CreateProductRequest) (*model.Product, error) {
		return h.catalog.CreateProduct(c.Request().Context(), &req.ProductInput)
	}, http.StatusCreated, &model.CreateProductRequest{})(c)
}

func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.UpdateProductRequest) (*model.Product, error) {
		return h.catalog.UpdateProduct(c.Request().Context(), uuid.MustParse(req.ID), &req.ProductInput)
	}, http.StatusOK, &model.UpdateProductRequest{})(c)
}

package handler

import (
	"net/http"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CartHandler serves anonymous carts addressed by their id.
type CartHandler struct {
	Handler
	carts *service.CartService
}

func (h *CartHandler) CreateCart(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.CreateCartRequest) (*model.PricedCart, error) {
		return h.carts.Create(c.Request().Context())
	}, http.StatusCreated, &model.CreateCartRequest{})(c)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.GetCartRequest) (*model.PricedCart, error) {
		return h.carts.Get(c.Request().Context(), req.ID)
	}, http.StatusOK, &model.GetCartRequest{})(c)
}

func (h *CartHandler) SetItem(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.SetCartItemRequest) (*model.PricedCart, error) {
		return h.carts.SetItem(c.Request().Context(), req.ID, uuid.MustParse(req.ProductID), req.Quantity)
	}, http.StatusOK, &model.SetCartItemRequest{})(c)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.RemoveCartItemRequest) (*model.PricedCart, error) {
		return h.carts.RemoveItem(c.Request().Context(), req.ID, uuid.MustParse(req.ProductID))
	}, http.StatusOK, &model.RemoveCartItemRequest{})(c)
}

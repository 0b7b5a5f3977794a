package handler

import (
	"net/http"

	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	Handler
	orders    *service.OrderService
	customers *service.CustomerService
	auth      *service.AuthService
}

// viewer identifies the caller for ownership checks.
func (h *OrderHandler) viewer(c echo.Context) (service.Viewer, error) {
	v := service.Viewer{Admin: h.auth.IsAdmin(middleware.GetUserRole(c))}
	customer, err := signedInCustomer(c, h.customers)
	if err != nil {
		return v, err
	}
	if customer != nil {
		v.CustomerID = &customer.ID
	}
	return v, nil
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.GetOrderRequest) (*model.Order, error) {
		v, err := h.viewer(c)
		if err != nil {
			return nil, err
		}
		return h.orders.Get(c.Request().Context(), req.Number, v)
	}, http.StatusOK, &model.GetOrderRequest{})(c)
}

// LookupOrder lets guests find their order with the number and the email
// used at checkout.
func (h *OrderHandler) LookupOrder(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.LookupOrderRequest) (*model.Order, error) {
		return h.orders.Lookup(c.Request().Context(), req.Number, req.Email)
	}, http.StatusOK, &model.LookupOrderRequest{})(c)
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.ListMyOrdersRequest) (model.Paginated[model.Order], error) {
		customer, err := signedInCustomer(c, h.customers)
		if err != nil {
			return model.Paginated[model.Order]{}, err
		}
		if customer == nil {
			_, pageSize, _ := req.Normalize()
			return model.NewPaginated[model.Order](nil, 1, pageSize, 0), nil
		}
		return h.orders.ListMine(c.Request().Context(), customer.ID, req.PageQuery)
	}, http.StatusOK, &model.ListMyOrdersRequest{})(c)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.CancelOrderRequest) (*model.Order, error) {
		v, err := h.viewer(c)
		if err != nil {
			return nil, err
		}
		return h.orders.Cancel(c.Request().Context(), req.Number, v)
	}, http.StatusOK, &model.CancelOrderRequest{})(c)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.ListOrdersRequest) (model.Paginated[model.Order], error) {
		return h.orders.List(c.Request().Context(), model.OrderStatus(req.Status), req.PageQuery)
	}, http.StatusOK, &model.ListOrdersRequest{})(c)
}

func (h *OrderHandler) GetOrderByID(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.GetOrderByIDRequest) (*model.Order, error) {
		return h.orders.GetByID(c.Request().Context(), uuid.MustParse(req.ID))
	}, http.StatusOK, &model.GetOrderByIDRequest{})(c)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.UpdateOrderStatusRequest) (*model.Order, error) {
		actor := model.AdminActor(middleware.GetUserID(c))
		return h.orders.UpdateStatus(c.Request().Context(), uuid.MustParse(req.ID), model.OrderStatus(req.Status), req.Note, actor)
	}, http.StatusOK, &model.UpdateOrderStatusRequest{})(c)
}

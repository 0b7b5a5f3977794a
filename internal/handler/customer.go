package handler

import (
	"net/http"

	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

type CustomerHandler struct {
	Handler
	customers *service.CustomerService
}

// GetMe returns the caller's account, creating it on first access.
func (h *CustomerHandler) GetMe(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.GetMeRequest) (*model.Customer, error) {
		return h.customers.Me(c.Request().Context(), middleware.GetUserID(c))
	}, http.StatusOK, &model.GetMeRequest{})(c)
}

func (h *CustomerHandler) UpdateMe(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.UpdateMeRequest) (*model.Customer, error) {
		return h.customers.UpdateMe(c.Request().Context(), middleware.GetUserID(c), req)
	}, http.StatusOK, &model.UpdateMeRequest{})(c)
}

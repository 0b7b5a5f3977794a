package handler

import (
	"net/http"

	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	Handler
	checkout  *service.CheckoutService
	customers *service.CustomerService
}

// Checkout places an order from a cart. Signed-in customers get the order
// linked to their account; everyone else checks out as a guest.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
		customer, err := signedInCustomer(c, h.customers)
		if err != nil {
			return nil, err
		}
		return h.checkout.Checkout(c.Request().Context(), req, customer)
	}, http.StatusCreated, &model.CheckoutRequest{})(c)
}

// signedInCustomer returns the caller's customer record, or nil for guests
// and for users that have not opened their account yet.
func signedInCustomer(c echo.Context, customers *service.CustomerService) (*model.Customer, error) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return nil, nil
	}
	return customers.Find(c.Request().Context(), userID)
}

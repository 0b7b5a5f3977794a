package handler

import (
	"io"
	"net/http"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/payment"
	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	Handler
	payments *service.PaymentService
}

// Callback receives the customer back from the hosted form and redirects
// them to their order page with the payment outcome.
func (h *PaymentHandler) Callback(c echo.Context) error {
	return HandleRedirect(h.Handler, func(c echo.Context, req *model.PaymentCallbackRequest) (string, error) {
		return h.payments.HandleCallback(c.Request().Context(), req.Token)
	}, http.StatusSeeOther, &model.PaymentCallbackRequest{})(c)
}

// Webhook reads the raw body itself: the signature covers the exact bytes
// the gateway sent.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return errs.NewBadRequestError("Could not read webhook body", true, nil, nil, nil)
	}

	signature := c.Request().Header.Get(payment.WebhookSignatureHeader)
	if err := h.payments.HandleWebhook(c.Request().Context(), body, signature); err != nil {
		middleware.GetLogger(c).Warn().Err(err).Msg("payment webhook rejected")
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.VerifyPaymentRequest) (*model.PaymentVerification, error) {
		actor := model.AdminActor(middleware.GetUserID(c))
		return h.payments.VerifyPayment(c.Request().Context(), uuid.MustParse(req.ID), actor)
	}, http.StatusOK, &model.VerifyPaymentRequest{})(c)
}

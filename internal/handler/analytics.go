package handler

import (
	"net/http"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

type AnalyticsHandler struct {
	Handler
	analytics *service.AnalyticsService
}

// Collect stores a tracking beacon from the storefront.
func (h *AnalyticsHandler) Collect(c echo.Context) error {
	return HandleNoContent(h.Handler, func(c echo.Context, req *model.CollectRequest) error {
		meta := model.CollectMeta{UserAgent: c.Request().UserAgent()}
		return h.analytics.Collect(c.Request().Context(), req, meta)
	}, http.StatusAccepted, &model.CollectRequest{})(c)
}

func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.DashboardRequest) (*model.Dashboard, error) {
		return h.analytics.Dashboard(c.Request().Context(), req)
	}, http.StatusOK, &model.DashboardRequest{})(c)
}

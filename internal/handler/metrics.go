package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the default Prometheus registry.
type MetricsHandler struct {
	handler echo.HandlerFunc
}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{handler: echo.WrapHandler(promhttp.Handler())}
}

func (h *MetricsHandler) Serve(c echo.Context) error {
	return h.handler(c)
}

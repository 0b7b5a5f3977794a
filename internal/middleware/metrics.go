package middleware

import (
	"time"

	"github.com/deppfellow/storefront/internal/metrics"
	"github.com/labstack/echo/v4"
)

// Metrics observes request durations for Prometheus, labelled by the route
// pattern. Unmatched routes share one label.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordHTTPRequest(c.Request().Method, route, statusFor(c.Response().Status, err), time.Since(start))
			return err
		}
	}
}

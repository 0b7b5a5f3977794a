package middleware

import (
	"time"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Limits per client ip.
const (
	collectRate   = rate.Limit(5) // analytics beacons per second
	collectBurst  = 30
	checkoutRate  = rate.Limit(10.0 / 60) // checkouts per second
	checkoutBurst = 5
	limiterExpiry = 5 * time.Minute
)

type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{server: s}
}

// Collect limits the public analytics endpoint.
func (r *RateLimitMiddleware) Collect() echo.MiddlewareFunc {
	return r.limit("analytics_collect", collectRate, collectBurst)
}

// Checkout limits order creation, which opens a payment form each time.
func (r *RateLimitMiddleware) Checkout() echo.MiddlewareFunc {
	return r.limit("checkout", checkoutRate, checkoutBurst)
}

func (r *RateLimitMiddleware) limit(endpoint string, limit rate.Limit, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: limiterExpiry,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(endpoint)
			GetLogger(c).Warn().Str("endpoint", endpoint).Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError("Too many requests, please slow down")
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewForbiddenError("Could not identify client", false)
		},
	})
}

// RecordRateLimitHit reports a denied request to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint": endpoint,
		})
	}
}

package handler

import (
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health    *HealthHandler
	Metrics   *MetricsHandler
	Catalog   *CatalogHandler
	Cart      *CartHandler
	Checkout  *CheckoutHandler
	Payments  *PaymentHandler
	Orders    *OrderHandler
	Customers *CustomerHandler
	Reviews   *ReviewHandler
	Analytics *AnalyticsHandler
	SEO       *SEOHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	base := NewHandler(s)
	return &Handlers{
		Health:    NewHealthHandler(s),
		Metrics:   NewMetricsHandler(),
		Catalog:   &CatalogHandler{Handler: base, catalog: services.Catalog},
		Cart:      &CartHandler{Handler: base, carts: services.Cart},
		Checkout:  &CheckoutHandler{Handler: base, checkout: services.Checkout, customers: services.Customers},
		Payments:  &PaymentHandler{Handler: base, payments: services.Payments},
		Orders:    &OrderHandler{Handler: base, orders: services.Orders, customers: services.Customers, auth: services.Auth},
		Customers: &CustomerHandler{Handler: base, customers: services.Customers},
		Reviews:   &ReviewHandler{Handler: base, reviews: services.Reviews, customers: services.Customers},
		Analytics: &AnalyticsHandler{Handler: base, analytics: services.Analytics},
		SEO:       &SEOHandler{Handler: base, seo: services.SEO},
	}
}

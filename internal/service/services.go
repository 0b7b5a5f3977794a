// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives validated
// data from the handler, applies the storefront's rules (pricing, the order
// state machine, payment reconciliation) and calls repositories and
// external clients.
package service

import (
	"github.com/deppfellow/storefront/internal/lib/email"
	"github.com/deppfellow/storefront/internal/lib/job"
	"github.com/deppfellow/storefront/internal/lib/payment"
	"github.com/deppfellow/storefront/internal/repository"
	"github.com/deppfellow/storefront/internal/server"
)

type Services struct {
	Auth      *AuthService
	Job       *job.JobService
	Catalog   *CatalogService
	Cart      *CartService
	Checkout  *CheckoutService
	Orders    *OrderService
	Payments  *PaymentService
	Customers *CustomerService
	Reviews   *ReviewService
	Analytics *AnalyticsService
	SEO       *SEOService
	Import    *ImportService
}

// Maintenance exposes the periodic sweeps to the job worker.
type Maintenance struct {
	*OrderService
	*PaymentService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	cfg := s.Config
	pricing := NewPricing(cfg.Storefront)
	gateway := payment.NewClient(cfg.Payment, s.Logger)
	authService := NewAuthService(cfg.Auth.SecretKey, cfg.Auth.AdminRole)

	orders := NewOrderService(repos.Orders, s.Job, cfg.Storefront.PendingOrderTTL, s.Logger)
	payments := NewPaymentService(repos.Orders, gateway, orders, PaymentConfig{
		WebhookSecret:  cfg.Payment.WebhookSecret,
		PublicURL:      cfg.Storefront.PublicURL,
		ReconcileDelay: cfg.Jobs.ReconcileDelay,
	}, s.Logger)

	s.Job.InitHandlers(job.Deps{
		Mailer:      email.NewClient(cfg, s.Logger),
		Orders:      repos.Orders,
		Maintenance: Maintenance{OrderService: orders, PaymentService: payments},
	})

	return &Services{
		Auth:      authService,
		Job:       s.Job,
		Catalog:   NewCatalogService(repos.Products),
		Cart:      NewCartService(repos.Carts, repos.Products, pricing),
		Checkout:  NewCheckoutService(repos.Carts, repos.Products, repos.Orders, gateway, pricing, cfg.Storefront.APIURL, s.Logger),
		Orders:    orders,
		Payments:  payments,
		Customers: NewCustomerService(repos.Customers, authService, s.Job, s.Logger),
		Reviews:   NewReviewService(repos.Reviews, repos.Products, repos.Orders),
		Analytics: NewAnalyticsService(repos.Analytics, cfg.Storefront.Currency),
		SEO:       NewSEOService(repos.Products, repos.Reviews, cfg.Storefront.SiteName, cfg.Storefront.PublicURL, cfg.Storefront.Currency),
		Import:    NewImportService(repos.Products, cfg.Jobs.ImportChunkSize, cfg.Jobs.ImportDelay, s.Logger),
	}, nil
}

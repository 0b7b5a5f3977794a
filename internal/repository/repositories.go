package repository

import (
	"github.com/deppfellow/storefront/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Customers *CustomerRepository
	Products  *ProductRepository
	Reviews   *ReviewRepository
	Orders    *OrderRepository
	Analytics *AnalyticsRepository
	Carts     *CartRepository
}

// NewRepositories builds every repository on the server's shared pool and
// Redis client.
func NewRepositories(s *server.Server) *Repositories {
	pool := s.DB.Pool
	return &Repositories{
		Customers: NewCustomerRepository(pool),
		Products:  NewProductRepository(pool),
		Reviews:   NewReviewRepository(pool),
		Orders:    NewOrderRepository(pool),
		Analytics: NewAnalyticsRepository(pool),
		Carts:     NewCartRepository(s.Redis),
	}
}

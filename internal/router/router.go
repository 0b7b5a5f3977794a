// Package router builds the echo instance: global middleware, the error
// handler and every route group.
package router

import (
	"github.com/deppfellow/storefront/internal/handler"
	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services.Auth)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.JSONSerializer = handler.JSONSerializer{}
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middleware.Metrics(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.BodyLimit(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerCatalogRoutes(v1, h, middlewares)
	registerShopRoutes(v1, h, middlewares)
	registerAccountRoutes(v1, h, middlewares)
	registerAdminRoutes(v1, h, middlewares)

	return router
}

// registerCatalogRoutes mounts the public read-only catalog, review and
// SEO routes.
func registerCatalogRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	products := v1.Group("/products")
	products.GET("", h.Catalog.ListProducts)
	products.GET("/:slug", h.Catalog.GetProduct)
	products.GET("/:slug/reviews", h.Reviews.ListReviews)
	products.POST("/:slug/reviews", h.Reviews.CreateReview, m.Auth.RequireAuth)

	v1.GET("/categories", h.Catalog.ListCategories)

	seo := v1.Group("/seo")
	seo.GET("/products/:slug", h.SEO.ProductMeta)
	seo.GET("/categories/:category", h.SEO.CategoryMeta)
}

func registerShopRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	carts := v1.Group("/carts")
	carts.POST("", h.Cart.CreateCart)
	carts.GET("/:id", h.Cart.GetCart)
	carts.PUT("/:id/items", h.Cart.SetItem)
	carts.DELETE("/:id/items/:productId", h.Cart.RemoveItem)

	v1.POST("/checkout", h.Checkout.Checkout, m.RateLimit.Checkout(), m.Auth.OptionalAuth)

	payments := v1.Group("/payments")
	payments.POST("/callback", h.Payments.Callback)
	payments.GET("/callback", h.Payments.Callback)
	payments.POST("/webhook", h.Payments.Webhook)

	orders := v1.Group("/orders")
	orders.POST("/lookup", h.Orders.LookupOrder)
	orders.GET("/:number", h.Orders.GetOrder, m.Auth.RequireAuth)
	orders.POST("/:number/cancel", h.Orders.CancelOrder, m.Auth.RequireAuth)

	v1.POST("/analytics/collect", h.Analytics.Collect, m.RateLimit.Collect())
}

func registerAccountRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	me := v1.Group("/me", m.Auth.RequireAuth)
	me.GET("", h.Customers.GetMe)
	me.PUT("", h.Customers.UpdateMe)
	me.GET("/orders", h.Orders.ListMyOrders)
}

func registerAdminRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	admin := v1.Group("/admin", m.Auth.RequireAuth, m.Auth.RequireAdmin)

	admin.POST("/products", h.Catalog.CreateProduct)
	admin.PUT("/products/:id", h.Catalog.UpdateProduct)

	admin.GET("/orders", h.Orders.ListOrders)
	admin.GET("/orders/:id", h.Orders.GetOrderByID)
	admin.PATCH("/orders/:id/status", h.Orders.UpdateStatus)
	admin.POST("/orders/:id/verify-payment", h.Payments.VerifyPayment)

	admin.GET("/analytics/dashboard", h.Analytics.Dashboard)
}

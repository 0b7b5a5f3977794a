// Package middleware holds the global and route-specific echo middleware:
// request ids, the request-scoped logger, New Relic tracing, Prometheus
// request metrics, Clerk authentication, rate limiting and the global error
// handler.
package middleware

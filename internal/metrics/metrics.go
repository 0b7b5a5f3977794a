// Package metrics registers the Prometheus collectors exposed on /metrics.
//
// Collectors are package-level and registered with the default registry
// through promauto, so recording a value is a single call from any layer.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Orders and payments
	OrderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Applied order status transitions",
		},
		[]string{"from", "to", "actor"},
	)

	PaymentResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_results_total",
			Help:      "Payment results applied to orders by source and outcome",
		},
		[]string{"source", "result"}, // result: confirmed, failed, refund_required, unchanged
	)

	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_webhook_requests_total",
			Help:      "Payment webhook deliveries by result",
		},
		[]string{"result"}, // processed, ignored, invalid_signature, malformed, error
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_gateway_request_duration_seconds",
			Help:      "Latency of payment gateway API calls",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"operation", "outcome"},
	)

	// Background work
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Background tasks processed by type and result",
		},
		[]string{"type", "result"},
	)

	ImportedProducts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_products_total",
			Help:      "Products processed by bulk import",
		},
		[]string{"result"}, // created, updated, failed
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "Requests through the circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected, cancelled
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state_transitions_total",
			Help:      "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordHTTPRequest observes one served request. route is the echo route
// pattern, not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func RecordOrderTransition(from, to, actor string) {
	OrderTransitions.WithLabelValues(from, to, actorLabel(actor)).Inc()
}

func RecordPaymentResult(source, result string) {
	PaymentResults.WithLabelValues(source, result).Inc()
}

func RecordWebhook(result string) {
	WebhookRequests.WithLabelValues(result).Inc()
}

func RecordGatewayCall(operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	GatewayRequestDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

func RecordJob(taskType string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	JobsProcessed.WithLabelValues(taskType, result).Inc()
}

func RecordImport(created, updated, failed int) {
	ImportedProducts.WithLabelValues("created").Add(float64(created))
	ImportedProducts.WithLabelValues("updated").Add(float64(updated))
	ImportedProducts.WithLabelValues("failed").Add(float64(failed))
}

// actorLabel drops the admin id from "admin:<id>".
func actorLabel(actor string) string {
	role, _, _ := strings.Cut(actor, ":")
	return role
}

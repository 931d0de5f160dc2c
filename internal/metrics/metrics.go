package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forma_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forma_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forma_signins_total",
			Help: "Total number of sign-in attempts",
		},
		[]string{"result"},
	)

	CollectionReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forma_collection_reloads_total",
			Help: "Total number of collection reloads from the upstream API",
		},
		[]string{"collection", "result"},
	)

	PaymentTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forma_payment_transitions_total",
			Help: "Total number of payment status transitions",
		},
		[]string{"status", "result"},
	)

	CheckoutSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forma_checkout_sessions_total",
			Help: "Total number of Stripe checkout sessions created",
		},
		[]string{"plan"},
	)

	GymActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forma_gym_activations_total",
			Help: "Total number of gym activation calls",
		},
		[]string{"result"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forma_upstream_request_duration_seconds",
			Help:    "Upstream gym API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ActiveSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "forma_active_sessions",
			Help: "Number of live sessions per storage scope",
		},
		[]string{"scope"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordSignIn(result string) {
	SignInsTotal.WithLabelValues(result).Inc()
}

func RecordReload(collection, result string) {
	CollectionReloadsTotal.WithLabelValues(collection, result).Inc()
}

func RecordPaymentTransition(status, result string) {
	PaymentTransitionsTotal.WithLabelValues(status, result).Inc()
}

func RecordCheckoutSession(plan string) {
	CheckoutSessionsTotal.WithLabelValues(plan).Inc()
}

func RecordGymActivation(result string) {
	GymActivationsTotal.WithLabelValues(result).Inc()
}

// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "Duration of HTTP requests in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"method", "path"},
	)

	// OrderTransitions counts applied status changes.
	OrderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailorshop_order_transitions_total",
			Help: "Order status transitions applied, by source and target status",
		},
		[]string{"from", "to"},
	)

	// RejectedTransitions counts status changes refused by the state machine.
	RejectedTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailorshop_order_transitions_rejected_total",
			Help: "Order status transitions rejected as invalid",
		},
		[]string{"from", "to"},
	)

	// InvoicesIssued counts newly composed invoices.
	InvoicesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tailorshop_invoices_issued_total",
		Help: "Invoices composed with a freshly allocated number",
	})

	// DocumentRenders observes invoice image render time.
	DocumentRenders = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tailorshop_document_render_ms",
		Help:    "Invoice image render duration in ms",
		Buckets: []float64{5, 10, 25, 50, 100, 200, 400},
	})

	// NotificationFailures counts notifications that could not be published.
	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tailorshop_notification_failures_total",
		Help: "Notifications dropped after a publish error",
	})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency. Requests are labelled by the
// matched ServeMux pattern so path parameters do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, path).Observe(float64(time.Since(start).Milliseconds()))
	})
}

// ObserveSince records a render duration that started at start.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(float64(time.Since(start).Milliseconds()))
}

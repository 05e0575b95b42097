package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlacementsTotal counts placement outcomes: ok, validation_error,
	// product_not_found, out_of_stock, persistence_error.
	PlacementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_placements_total",
			Help: "Total number of order placement attempts by result",
		},
		[]string{"result"},
	)

	// CompensationsTotal counts stock restorations replayed after a
	// mid-placement reservation failure.
	CompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_compensations_total",
			Help: "Total number of stock restorations after partial reservation failure",
		},
	)

	// ReconcileNeededTotal counts placements that left stock decremented
	// with no order written. Anything above zero needs operator attention.
	ReconcileNeededTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_reconcile_needed_total",
			Help: "Placements that decremented stock but failed to persist an order",
		},
	)

	// MailDeliveriesTotal counts confirmation mail outcomes: ok, error,
	// breaker_open, skipped_duplicate.
	MailDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confirmation_mail_deliveries_total",
			Help: "Total number of confirmation mail delivery attempts by result",
		},
		[]string{"result"},
	)

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)
)

// Middleware records request counts and latency per chi route pattern.
func Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			endpoint := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				endpoint = rc.RoutePattern()
			}
			requestsTotal.WithLabelValues(service, r.Method, endpoint, strconv.Itoa(sw.status)).Inc()
			requestDuration.WithLabelValues(service, r.Method, endpoint).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "equiprent"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	rentalsApplied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rentals_applied_total",
			Help:      "Rental applications accepted.",
		},
	)

	rentalsRejectedOutOfStock = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rentals_out_of_stock_total",
			Help:      "Rental applications refused because no unit was available.",
		},
	)

	rentalsReturned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rentals_returned_total",
			Help:      "Rentals returned by renters.",
		},
	)

	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rental_status_changes_total",
			Help:      "Admin status changes by target status.",
		},
		[]string{"status"},
	)

	overdueMarked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rentals_overdue_marked_total",
			Help:      "Rentals moved to overdue by the sweeper.",
		},
	)

	feedSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_subscribers",
			Help:      "Admin live feed connections currently open.",
		},
	)
)

// Register registers collectors with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			rentalsApplied,
			rentalsRejectedOutOfStock,
			rentalsReturned,
			statusChanges,
			overdueMarked,
			feedSubscribers,
		)
	})
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func IncRentalApplied() { rentalsApplied.Inc() }

func IncOutOfStock() { rentalsRejectedOutOfStock.Inc() }

func IncRentalReturned() { rentalsReturned.Inc() }

func IncStatusChange(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

func AddOverdue(n int) {
	if n > 0 {
		overdueMarked.Add(float64(n))
	}
}

func SetFeedSubscribers(n int) { feedSubscribers.Set(float64(n)) }

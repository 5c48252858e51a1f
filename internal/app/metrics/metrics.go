package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salon_service",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon_service",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salon_service",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	selectionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salon_service",
			Subsystem: "cart",
			Name:      "selection_conflicts_total",
			Help:      "Total number of selection toggles rejected by slot exclusivity.",
		},
	)

	checkouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salon_service",
			Subsystem: "cart",
			Name:      "checkouts_total",
			Help:      "Total number of completed checkouts.",
		},
	)

	checkoutAmount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "salon_service",
			Subsystem: "cart",
			Name:      "checkout_amount",
			Help:      "Checkout totals in minor currency units.",
			Buckets:   prometheus.ExponentialBuckets(1000, 4, 8), // 10.00 to ~163k
		},
	)

	appointments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon_service",
			Subsystem: "booking",
			Name:      "appointments_total",
			Help:      "Total number of appointment state transitions.",
		},
		[]string{"status"},
	)

	reminders = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salon_service",
			Subsystem: "booking",
			Name:      "reminders_total",
			Help:      "Total number of appointment reminders dispatched.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		selectionConflicts,
		checkouts,
		checkoutAmount,
		appointments,
		reminders,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordSelectionConflict records a toggle rejected because the slot was held
// by another selected entry.
func RecordSelectionConflict() {
	selectionConflicts.Inc()
}

// RecordCheckout records a completed checkout and its total.
func RecordCheckout(total int64) {
	checkouts.Inc()
	if total < 0 {
		total = 0
	}
	checkoutAmount.Observe(float64(total))
}

// RecordAppointment records an appointment reaching the given status.
func RecordAppointment(status string) {
	if status == "" {
		status = "unknown"
	}
	appointments.WithLabelValues(status).Inc()
}

// RecordReminder records a dispatched appointment reminder.
func RecordReminder() {
	reminders.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 {
		return "/"
	}
	switch parts[0] {
	case "accounts":
		if len(parts) == 1 {
			return "/accounts"
		}
		if len(parts) == 2 {
			return "/accounts/:account"
		}
		return "/accounts/:account/" + parts[2]
	case "designs":
		if len(parts) == 1 {
			return "/designs"
		}
		if len(parts) == 2 {
			return "/designs/:design"
		}
		return "/designs/:design/" + parts[2]
	default:
		return "/" + parts[0]
	}
}

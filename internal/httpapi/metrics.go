package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics of the dashboard server.
type Metrics struct {
	Requests     *prometheus.CounterVec
	Latency      *prometheus.HistogramVec
	ViewsMissing prometheus.Counter
	LoadErrors   prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wow_dashboard_requests_total",
			Help: "Dashboard HTTP requests by route and status",
		}, []string{"route", "status"}),

		Latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wow_dashboard_request_duration_seconds",
			Help:    "Dashboard request latency, including the full table re-read",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),

		ViewsMissing: f.NewCounter(prometheus.CounterOpts{
			Name: "wow_dashboard_views_missing_total",
			Help: "Views rendered before any table was written",
		}),

		LoadErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "wow_dashboard_load_errors_total",
			Help: "Views that failed to load a table",
		}),
	}
}

package http

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRegistry holds the Prometheus metrics exposed by the API server.
type MetricsRegistry struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	ScansTotal      *prometheus.CounterVec
	ScanDuration    *prometheus.HistogramVec
	AssetsSkipped   *prometheus.CounterVec
}

// NewMetricsRegistry creates the metrics registry with all scanner metrics
// registered.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cotscan_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status code",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"route", "code"},
		),

		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cotscan_scans_total",
				Help: "Total number of scans executed by mode",
			},
			[]string{"mode"},
		),

		ScanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cotscan_scan_duration_seconds",
				Help:    "Duration of scan computations by mode",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"mode"},
		),

		AssetsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cotscan_assets_skipped_total",
				Help: "Assets omitted from scan results by mode",
			},
			[]string{"mode"},
		),
	}

	m.registry.MustRegister(
		m.RequestDuration,
		m.ScansTotal,
		m.ScanDuration,
		m.AssetsSkipped,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *MetricsRegistry) Registry() *prometheus.Registry {
	return m.registry
}

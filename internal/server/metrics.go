package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retina_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retina_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Glimpse processing metrics
	glimpseRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retina_glimpse_requests_total",
			Help: "Total number of glimpse requests",
		},
		[]string{"type", "status"}, // type: glimpse, observe, trajectory
	)

	glimpseProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retina_glimpse_processing_duration_seconds",
			Help:    "Glimpse processing duration in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"type"},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retina_upload_size_bytes",
			Help:    "Size of uploaded images in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retina_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)
)

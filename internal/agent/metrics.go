package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retina_extractions_total",
			Help: "Total number of glimpse extraction calls",
		},
		[]string{"status"}, // status: ok, error
	)

	extractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retina_extraction_duration_seconds",
			Help:    "Glimpse extraction duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	observationSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retina_observation_steps",
			Help:    "Number of glimpse steps per observation run",
			Buckets: []float64{1, 2, 4, 6, 8, 12, 16, 32},
		},
	)
)

package multiply

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	multiplicationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polycalc_multiplications_total",
			Help: "The total number of polynomial multiplications processed",
		},
		[]string{"strategy", "status"},
	)
	multiplicationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polycalc_multiplication_duration_seconds",
			Help:    "The duration of polynomial multiplications in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
		},
		[]string{"strategy"},
	)
	resultTerms = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polycalc_result_terms",
		Help:    "The number of terms in multiplication results",
		Buckets: prometheus.ExponentialBuckets(1, 10, 10),
	})
	// estimateAccuracy is the ratio estimate / actual result size.
	estimateAccuracy = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polycalc_estimate_accuracy_ratio",
		Help:    "Estimated over actual number of result terms",
		Buckets: []float64{0.1, 0.25, 0.5, 0.75, 0.9, 1.1, 1.5, 2, 4, 10},
	})
	workersUsed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polycalc_multiplication_workers",
			Help:    "The number of workers used per multiplication",
			Buckets: prometheus.LinearBuckets(1, 1, 16),
		},
		[]string{"strategy"},
	)
)

// Package metrics registers the prometheus collectors shared by the
// generator, the session use cases and the HTTP adapter.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationAttempts = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pyramid_generation_attempts",
		Help:    "Construction attempts needed per generated pyramid",
		Buckets: []float64{1, 2, 5, 10, 50, 100, 500, 1000},
	}, []string{"levels", "parity"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pyramid_generation_duration_seconds",
		Help:    "Wall time to generate a pyramid",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	}, []string{"levels", "parity"})

	generationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pyramid_generation_failures_total",
		Help: "Generations that exhausted their attempt budget",
	}, []string{"stage"})

	startRegenerations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pyramid_start_regenerations_total",
		Help: "Pyramids discarded because no non-trivial start was sampled",
	})

	wins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pyramid_session_wins_total",
		Help: "Puzzles solved by players",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pyramid_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"route", "status"})
)

// ObserveGeneration records one successful generation.
func ObserveGeneration(levels int, parity bool, attempts int, d time.Duration) {
	l, p := strconv.Itoa(levels), strconv.FormatBool(parity)
	generationAttempts.WithLabelValues(l, p).Observe(float64(attempts))
	generationDuration.WithLabelValues(l, p).Observe(d.Seconds())
}

// GenerationFailed counts an exhausted budget; stage is "construct" or "start".
func GenerationFailed(stage string) {
	generationFailures.WithLabelValues(stage).Inc()
}

func StartRegenerated() { startRegenerations.Inc() }

func Win() { wins.Inc() }

func HTTPRequest(route string, status int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

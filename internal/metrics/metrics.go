// Package metrics holds the Prometheus collectors exported on /metrics.
//
// Usage:
//
//	start := time.Now()
//	fact, err := provider.FunFact(ctx, in)
//	metrics.RecordAIRequest("funfact", "gemini", time.Since(start), err)
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for AI requests.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

var (
	// AIRequestsTotal counts provider calls by operation, provider and outcome.
	AIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrivia_ai_requests_total",
			Help: "Total number of generative AI requests",
		},
		[]string{"operation", "provider", "outcome"},
	)

	// AIRequestDuration tracks provider call latency.
	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "cinetrivia_ai_request_duration_seconds",
			Help: "Duration of generative AI requests in seconds",
			// image generation regularly takes tens of seconds
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"operation", "provider"},
	)

	// PosterCacheTotal counts poster cache lookups by result (hit, miss).
	PosterCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrivia_poster_cache_total",
			Help: "Total number of poster cache lookups",
		},
		[]string{"result"},
	)

	// PosterFallbacksTotal counts posters that fell back to the placeholder.
	PosterFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinetrivia_poster_fallbacks_total",
			Help: "Total number of poster requests answered with the placeholder image",
		},
	)

	// SupersededTotal counts requests dropped because a newer one replaced them.
	SupersededTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrivia_superseded_requests_total",
			Help: "Total number of requests superseded by a newer request for the same widget",
		},
		[]string{"widget"},
	)

	// CatalogReloadsTotal counts catalog file reloads by outcome.
	CatalogReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrivia_catalog_reloads_total",
			Help: "Total number of catalog reload attempts",
		},
		[]string{"outcome"},
	)

	// CatalogMovies is the number of movies currently served.
	CatalogMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinetrivia_catalog_movies",
			Help: "Number of movies in the active catalog",
		},
	)
)

// RecordAIRequest records one provider call.
func RecordAIRequest(operation, provider string, duration time.Duration, err error) {
	AIRequestsTotal.WithLabelValues(operation, provider, outcome(err)).Inc()
	AIRequestDuration.WithLabelValues(operation, provider).Observe(duration.Seconds())
}

// RecordPosterCache records a poster cache lookup.
func RecordPosterCache(hit bool) {
	if hit {
		PosterCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	PosterCacheTotal.WithLabelValues("miss").Inc()
}

// RecordCatalogReload records a reload attempt and the resulting catalog size.
func RecordCatalogReload(count int, err error) {
	CatalogMovies.Set(float64(count))
	if err != nil {
		CatalogReloadsTotal.WithLabelValues(OutcomeError).Inc()
		return
	}
	CatalogReloadsTotal.WithLabelValues(OutcomeSuccess).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verification pipeline counters, partitioned by query mode where relevant.

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenchecker",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total pipeline runs started",
	}, []string{"mode"})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tokenchecker",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a full sequential run",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"mode"})

	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenchecker",
		Subsystem: "verifier",
		Name:      "verifications_total",
		Help:      "Wallet verifications by outcome",
	}, []string{"mode", "outcome"})

	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenchecker",
		Subsystem: "pipeline",
		Name:      "retries_total",
		Help:      "Single-wallet retries by outcome",
	}, []string{"outcome"})

	EnrichmentLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenchecker",
		Subsystem: "enrichment",
		Name:      "lookups_total",
		Help:      "Metadata and price lookups by source and result",
	}, []string{"source", "result"})

	RateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenchecker",
		Subsystem: "ratelimit",
		Name:      "waits_total",
		Help:      "Requests delayed by the client-side rate limiter",
	}, []string{"api"})
)

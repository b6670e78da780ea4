package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	URLsPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "urls_pending",
			Help: "Current number of URLs waiting for the next batch cycle.",
		},
	)

	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_cycles_total",
			Help: "Total number of batch cycles by outcome.",
		},
		[]string{"status"}, // success, failure, rejected, empty
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batch_cycle_duration_seconds",
			Help:    "Duration of complete batch cycles.",
			Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600},
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stage_duration_seconds",
			Help:    "Duration of a single extraction stage over a batch.",
			Buckets: []float64{0.01, 0.1, 1, 5, 15, 60, 300, 900},
		},
		[]string{"stage"},
	)

	StageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_failures_total",
			Help: "Total number of whole-stage failures.",
		},
		[]string{"stage", "policy"}, // policy: fatal, degraded
	)

	JoinDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "join_dropped_urls_total",
			Help: "URLs dropped from the merged matrix because a stage had no row for them.",
		},
	)

	RegistryUpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_upserts_total",
			Help: "Registry upserts by outcome.",
		},
		[]string{"outcome"}, // inserted, bumped
	)

	DetectorErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detector_errors_total",
			Help: "Behavioral detectors that recovered from an error.",
		},
		[]string{"detector"},
	)

	LookupFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reputation_lookup_failures_total",
			Help: "Reputation sub-lookups that fell back to the sentinel.",
		},
		[]string{"lookup"}, // tls, whois, reputation_api, final_host
	)

	PublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blocklist_publishes_total",
			Help: "Block-list publish attempts by outcome.",
		},
		[]string{"status"},
	)
)

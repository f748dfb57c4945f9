// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	HuntsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunter_hunts_total",
			Help: "Hunts finished, by outcome code (ok for success)",
		},
		[]string{"outcome"},
	)

	HuntDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hunter_hunt_duration_seconds",
			Help:    "Wall-clock duration of a hunt including the rate limiter wait",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	HuntsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hunter_hunts_in_flight",
			Help: "Hunts currently running",
		},
	)

	RateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hunter_ratelimit_wait_seconds",
			Help:    "Time spent waiting for a provider request turn",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunter_provider_requests_total",
			Help: "Search provider requests, by outcome",
		},
		[]string{"outcome"},
	)

	ResultsSeen = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hunter_results_seen_total",
			Help: "Organic results classified",
		},
	)

	Verdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunter_verdicts_total",
			Help: "Classifier verdicts over result items",
		},
		[]string{"verdict"},
	)

	LeadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hunter_leads_created_total",
			Help: "Leads persisted",
		},
	)

	LeadsDuplicate = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hunter_leads_duplicate_total",
			Help: "Candidate leads skipped because they were already recorded",
		},
	)

	LeadsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hunter_leads_dropped_total",
			Help: "Candidate leads lost to a persistence failure",
		},
	)

	MirrorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunter_mirror_failures_total",
			Help: "Best-effort lead mirror writes that failed",
		},
		[]string{"mirror"},
	)
)

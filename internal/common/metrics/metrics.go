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

	RankingFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_ranking_fallbacks_total",
			Help: "Ranking requests answered from a fallback path",
		},
		[]string{"reason"},
	)

	RuleOverrides = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_rule_overrides_total",
			Help: "Oracle diagnoses replaced by the symptom-pair rule table",
		},
		[]string{"disease"},
	)

	UrgencyLevels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_urgency_levels_total",
			Help: "Assessed urgency per ranking request",
		},
		[]string{"urgency"},
	)

	ConfidenceLevels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_confidence_levels_total",
			Help: "Confidence level assigned to each scored diagnosis",
		},
		[]string{"level"},
	)

	DoctorsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triage_doctors_returned",
			Help:    "Number of doctors in each ranking response",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10, 15},
		},
	)

	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "triage_external_call_duration_seconds",
			Help: "Latency of calls to the prediction service, directory and rating store",
		},
		[]string{"dependency", "outcome"},
	)
)

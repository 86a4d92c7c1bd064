// Package metrics declares the Prometheus series the handlers feed directly.
// Registration happens at import time through promauto; handlers only touch
// the vectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Jobs completed, per task type",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Jobs failed, per task type and error code",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Handling time from job receipt to completion",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Jobs currently being handled, per task type",
		},
		[]string{"task_type"},
	)

	LeadsDistributed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_distributed_total",
			Help: "Total number of leads assigned to a team member",
		},
		[]string{"tenant_id"},
	)

	LeadsUnassigned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_unassigned_total",
			Help: "Total number of leads that found no eligible team member",
		},
		[]string{"tenant_id"},
	)

	DistributionScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lead_distribution_score",
			Help:    "Composite score of the winning candidate per distribution",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
		[]string{"tenant_id"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsEnqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upsertmonster_jobs_enqueued_total",
		Help: "Total number of upsert jobs enqueued",
	})

	JobsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upsertmonster_jobs_completed_total",
		Help: "Total number of upsert jobs completed",
	})

	JobsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upsertmonster_jobs_failed_total",
		Help: "Total number of upsert jobs that failed",
	})

	RecordsUpsertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upsertmonster_records_upserted_total",
		Help: "Total number of video records upserted successfully",
	})

	RecordUpsertFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upsertmonster_record_upsert_failures_total",
		Help: "Total number of video records that failed to upsert",
	})

	ProgressUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upsertmonster_progress_updates_total",
		Help: "Total number of job progress writes to the queue backend",
	})

	JobProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "upsertmonster_job_processing_duration_seconds",
		Help:    "Time taken to process upsert jobs in seconds",
		Buckets: prometheus.DefBuckets,
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "upsertmonster_active_workers",
		Help: "Current number of active workers",
	})
)

package notify

import "github.com/upsert-monster/internal/metrics"

// MetricsNotifier feeds lifecycle transitions into Prometheus counters.
type MetricsNotifier struct{}

func (MetricsNotifier) JobAdded(string, string) {
	metrics.JobsEnqueuedTotal.Inc()
}

func (MetricsNotifier) JobStarted(string) {}

func (MetricsNotifier) JobProgress(string, int) {
	metrics.ProgressUpdatesTotal.Inc()
}

func (MetricsNotifier) RecordFailed(string, string, error) {
	metrics.RecordUpsertFailuresTotal.Inc()
}

func (MetricsNotifier) JobCompleted(string) {
	metrics.JobsCompletedTotal.Inc()
}

func (MetricsNotifier) JobFailed(string, error) {
	metrics.JobsFailedTotal.Inc()
}

func (MetricsNotifier) Drained() {}

func (MetricsNotifier) QueueError(error) {}

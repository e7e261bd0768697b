// Package notify emits structured events for queue and worker lifecycle
// transitions. Notifiers are observational only: implementations must not
// retry, resubmit, or otherwise influence job processing.
package notify

// Notifier receives lifecycle transitions. For a single job, JobStarted is
// delivered before any JobProgress, which all precede exactly one of
// JobCompleted or JobFailed. No ordering is guaranteed across jobs.
type Notifier interface {
	JobAdded(jobKey, name string)
	JobStarted(jobKey string)
	JobProgress(jobKey string, progress int)
	RecordFailed(jobKey, recordID string, err error)
	JobCompleted(jobKey string)
	JobFailed(jobKey string, err error)
	Drained()
	QueueError(err error)
}

// Multi fans out every event to each notifier in order.
type Multi []Notifier

func (m Multi) JobAdded(jobKey, name string) {
	for _, n := range m {
		n.JobAdded(jobKey, name)
	}
}

func (m Multi) JobStarted(jobKey string) {
	for _, n := range m {
		n.JobStarted(jobKey)
	}
}

func (m Multi) JobProgress(jobKey string, progress int) {
	for _, n := range m {
		n.JobProgress(jobKey, progress)
	}
}

func (m Multi) RecordFailed(jobKey, recordID string, err error) {
	for _, n := range m {
		n.RecordFailed(jobKey, recordID, err)
	}
}

func (m Multi) JobCompleted(jobKey string) {
	for _, n := range m {
		n.JobCompleted(jobKey)
	}
}

func (m Multi) JobFailed(jobKey string, err error) {
	for _, n := range m {
		n.JobFailed(jobKey, err)
	}
}

func (m Multi) Drained() {
	for _, n := range m {
		n.Drained()
	}
}

func (m Multi) QueueError(err error) {
	for _, n := range m {
		n.QueueError(err)
	}
}

// Noop discards every event.
type Noop struct{}

func (Noop) JobAdded(string, string)            {}
func (Noop) JobStarted(string)                  {}
func (Noop) JobProgress(string, int)            {}
func (Noop) RecordFailed(string, string, error) {}
func (Noop) JobCompleted(string)                {}
func (Noop) JobFailed(string, error)            {}
func (Noop) Drained()                           {}
func (Noop) QueueError(error)                   {}

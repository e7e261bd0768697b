package worker

import (
	"context"
	"strings"

	"github.com/upsert-monster/internal/jobs"
	"github.com/upsert-monster/internal/metrics"
	"github.com/upsert-monster/internal/notify"
	"github.com/upsert-monster/internal/queue"
	"github.com/upsert-monster/internal/videostore"
)

// Processor executes one claimed job. A returned error is fatal: the pool
// marks the job failed. Per-record failures are handled inside Process and
// never reach the pool.
type Processor interface {
	Process(ctx context.Context, job *jobs.Job) (result string, err error)
}

// UpsertProcessor upserts each video in a job's payload, in payload order,
// persisting progress after every record.
type UpsertProcessor struct {
	queue    queue.Queue
	store    videostore.Store
	notifier notify.Notifier
}

// NewUpsertProcessor creates the batch upsert processor.
func NewUpsertProcessor(q queue.Queue, store videostore.Store, notifier notify.Notifier) *UpsertProcessor {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &UpsertProcessor{queue: q, store: store, notifier: notifier}
}

// Process runs the upsert loop. A record that fails to upsert is notified
// and skipped; the job still runs to completion and reaches progress 100.
// Only a malformed payload fails the job.
func (p *UpsertProcessor) Process(ctx context.Context, job *jobs.Job) (string, error) {
	if !strings.HasPrefix(job.Name, jobs.NamePrefix) {
		// Another job type sharing the queue; not ours to process.
		return "", nil
	}

	payload, err := job.DecodePayload()
	if err != nil {
		return "", err
	}

	summary := &jobs.Summary{}
	n := len(payload.Videos)

	for i, video := range payload.Videos {
		if err := p.store.Upsert(ctx, video); err != nil {
			p.notifier.RecordFailed(job.Key, video.ID, err)
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, jobs.Outcome{
				ID:    video.ID,
				Error: err.Error(),
			})
		} else {
			metrics.RecordsUpsertedTotal.Inc()
			summary.Outcomes = append(summary.Outcomes, jobs.Outcome{
				ID: video.ID,
				OK: true,
			})
		}
		summary.Processed++

		// Progress counts the records done before this one: after index i
		// the job reports floor(i/n*100), and only the final forced write
		// below accounts for the last record.
		p.reportProgress(ctx, job.Key, i*100/n)
	}

	p.reportProgress(ctx, job.Key, 100)

	return summary.Encode(), nil
}

func (p *UpsertProcessor) reportProgress(ctx context.Context, key string, progress int) {
	if err := p.queue.SetProgress(ctx, key, progress); err != nil {
		// Pollers miss one update; the batch keeps going.
		p.notifier.QueueError(err)
		return
	}
	p.notifier.JobProgress(key, progress)
}

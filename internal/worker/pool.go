package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/upsert-monster/internal/jobs"
	"github.com/upsert-monster/internal/logger"
	"github.com/upsert-monster/internal/metrics"
	"github.com/upsert-monster/internal/notify"
	"github.com/upsert-monster/internal/queue"
)

// Pool claims jobs from the queue and runs them through a Processor. Each
// worker handles one job at a time; workers share nothing but the queue.
type Pool struct {
	queue        queue.Queue
	processor    Processor
	notifier     notify.Notifier
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	workerCount  int
	pollInterval time.Duration
	idle         atomic.Bool
}

// PoolOptions configures a Pool.
type PoolOptions struct {
	Queue        queue.Queue
	Processor    Processor
	Notifier     notify.Notifier
	WorkerCount  int
	PollInterval time.Duration
}

// NewPool creates a worker pool.
func NewPool(opts PoolOptions) *Pool {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		queue:        opts.Queue,
		processor:    opts.Processor,
		notifier:     opts.Notifier,
		workerCount:  opts.WorkerCount,
		pollInterval: opts.PollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins processing jobs with the configured number of workers.
func (p *Pool) Start() {
	logger.Logger.Info().Int("worker_count", p.workerCount).Msg("Starting worker pool")
	metrics.ActiveWorkers.Set(float64(p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully shuts down the worker pool. A job already claimed runs
// to completion; there is no mid-job cancellation.
func (p *Pool) Stop() {
	logger.Logger.Info().Msg("Stopping worker pool")
	p.cancel()
	p.wg.Wait()
	metrics.ActiveWorkers.Set(0)
	logger.Logger.Info().Msg("Worker pool stopped")
}

// worker polls the queue for claimable jobs.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log := logger.WithWorkerID(id)
	log.Info().Msg("Worker started")

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			log.Info().Msg("Worker shutting down")
			return
		case <-ticker.C:
			job, err := p.queue.Claim(p.ctx)
			if err != nil {
				log.Error().Err(err).Msg("Error claiming job")
				p.notifier.QueueError(err)
				continue
			}

			if job == nil {
				// Emit drained once per busy-to-idle transition.
				if p.idle.CompareAndSwap(false, true) {
					p.notifier.Drained()
				}
				continue
			}

			p.idle.Store(false)
			p.processJob(id, job)
		}
	}
}

// processJob runs a single claimed job and records its terminal state.
// It runs on its own context: cancelling the poll loop must not abort an
// in-flight job's progress or terminal writes, and Stop() waits for them.
func (p *Pool) processJob(workerID int, job *jobs.Job) {
	ctx := context.Background()
	startTime := time.Now()
	log := logger.WithWorkerID(workerID)
	log.Info().
		Str("job_key", job.Key).
		Str("name", job.Name).
		Msg("Processing job")

	p.notifier.JobStarted(job.Key)

	result, err := p.processor.Process(ctx, job)
	metrics.JobProcessingDuration.Observe(time.Since(startTime).Seconds())

	if err != nil {
		log.Error().Str("job_key", job.Key).Err(err).Msg("Job processing failed")
		if failErr := p.queue.Fail(ctx, job.Key, err.Error()); failErr != nil {
			log.Error().Str("job_key", job.Key).Err(failErr).Msg("Failed to mark job as failed")
			p.notifier.QueueError(failErr)
		}
		p.notifier.JobFailed(job.Key, err)
		return
	}

	if err := p.queue.Complete(ctx, job.Key, result); err != nil {
		log.Error().Str("job_key", job.Key).Err(err).Msg("Failed to mark job as completed")
		p.notifier.QueueError(err)
		return
	}

	p.notifier.JobCompleted(job.Key)
	log.Info().Str("job_key", job.Key).Msg("Job completed")
}

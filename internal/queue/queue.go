// Package queue provides the durable job queue the service is built around.
// The backend (Redis) is the sole source of truth for job state: every
// mutation goes through it and nothing is cached in-process across calls.
package queue

import (
	"context"
	"fmt"

	"github.com/upsert-monster/internal/jobs"
)

// Queue is the contract between the API, the worker pool, and the backend.
type Queue interface {
	// Enqueue appends a new waiting job and returns immediately; it never
	// blocks on processing.
	Enqueue(ctx context.Context, name string, payload *jobs.Payload) (*jobs.Job, error)

	// Claim atomically moves one waiting job to active and returns it.
	// Returns (nil, nil) when the queue is empty.
	Claim(ctx context.Context) (*jobs.Job, error)

	// SetProgress persists a progress value for a job. The single writer per
	// job only ever writes non-decreasing values.
	SetProgress(ctx context.Context, key string, progress int) error

	// Progress reads the persisted progress for a job. A job that no longer
	// exists reports 100: not found is treated as done.
	Progress(ctx context.Context, key string) (int, error)

	// Complete marks a job completed and stores its result.
	Complete(ctx context.Context, key, result string) error

	// Fail marks a job failed and stores the fatal error.
	Fail(ctx context.Context, key, errMsg string) error

	// FindByExactKey looks a job up by the exact key assigned at enqueue.
	FindByExactKey(ctx context.Context, key string) (*jobs.Job, error)

	// FindByNamePrefix scans up to scanLimit of the most recent jobs and
	// returns the first whose name starts with prefix. Linear on purpose;
	// job volume is assumed low enough that a secondary index is not worth
	// carrying.
	FindByNamePrefix(ctx context.Context, prefix string, scanLimit int) (*jobs.Job, error)

	// Find resolves a locator through a single lookup path: exact key first
	// when the locator carries one, then the name-prefix scan.
	Find(ctx context.Context, loc jobs.Locator) (*jobs.Job, error)
}

// BackendError wraps a failure to reach or mutate the queue backend.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("queue backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Package videostore persists video records. The worker only depends on
// the Store contract: an idempotent insert-or-update keyed by video id.
package videostore

import (
	"context"

	"github.com/upsert-monster/internal/jobs"
)

// Store upserts one video record. Re-invoking with the same id and fields
// must yield the same stored state.
type Store interface {
	Upsert(ctx context.Context, video jobs.Video) error
}

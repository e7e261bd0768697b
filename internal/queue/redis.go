package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/upsert-monster/internal/config"
	"github.com/upsert-monster/internal/jobs"
	"github.com/upsert-monster/internal/notify"
)

const defaultScanLimit = 200

// NewRedisClient creates the shared Redis connection and verifies it.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, &BackendError{Op: "connect", Err: err}
	}

	return client, nil
}

// RedisQueue implements Queue on Redis. Each job lives in a hash keyed by a
// backend-generated UUID; a waiting list and an active list drive dispatch,
// and a recency index backs the name-prefix scan.
type RedisQueue struct {
	rdb       *redis.Client
	keyPrefix string
	scanLimit int
	notifier  notify.Notifier
}

// RedisQueueOptions configures a RedisQueue.
type RedisQueueOptions struct {
	Client    *redis.Client
	KeyPrefix string
	ScanLimit int
	Notifier  notify.Notifier
}

// NewRedisQueue creates a Redis-backed queue.
func NewRedisQueue(opts RedisQueueOptions) *RedisQueue {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "upsertq"
	}
	if opts.ScanLimit <= 0 {
		opts.ScanLimit = defaultScanLimit
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}

	return &RedisQueue{
		rdb:       opts.Client,
		keyPrefix: opts.KeyPrefix,
		scanLimit: opts.ScanLimit,
		notifier:  opts.Notifier,
	}
}

func (q *RedisQueue) jobKey(key string) string {
	return q.keyPrefix + ":job:" + key
}

func (q *RedisQueue) waitingKey() string {
	return q.keyPrefix + ":waiting"
}

func (q *RedisQueue) activeKey() string {
	return q.keyPrefix + ":active"
}

func (q *RedisQueue) indexKey() string {
	return q.keyPrefix + ":index"
}

// Enqueue appends a new waiting job. Two submissions deriving the same name
// yield two distinct entries; the queue does not deduplicate by name.
func (q *RedisQueue) Enqueue(ctx context.Context, name string, payload *jobs.Payload) (*jobs.Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &BackendError{Op: "enqueue", Err: err}
	}

	now := time.Now().UTC()
	job := &jobs.Job{
		Key:       uuid.New().String(),
		Name:      name,
		State:     jobs.StateWaiting,
		Progress:  0,
		Payload:   string(data),
		CreatedAt: now,
		UpdatedAt: now,
	}

	pipe := q.rdb.TxPipeline()
	pipe.HSet(ctx, q.jobKey(job.Key), map[string]interface{}{
		"name":       job.Name,
		"state":      string(job.State),
		"progress":   job.Progress,
		"payload":    job.Payload,
		"created_at": now.Format(time.RFC3339Nano),
		"updated_at": now.Format(time.RFC3339Nano),
	})
	pipe.LPush(ctx, q.waitingKey(), job.Key)
	pipe.LPush(ctx, q.indexKey(), job.Key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, &BackendError{Op: "enqueue", Err: err}
	}

	q.notifier.JobAdded(job.Key, job.Name)
	return job, nil
}

// Claim moves one waiting job to the active list and marks it active.
// RPOPLPUSH makes the handoff atomic, so a job is claimed by at most one
// worker.
func (q *RedisQueue) Claim(ctx context.Context) (*jobs.Job, error) {
	key, err := q.rdb.RPopLPush(ctx, q.waitingKey(), q.activeKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &BackendError{Op: "claim", Err: err}
	}

	now := time.Now().UTC()
	if err := q.rdb.HSet(ctx, q.jobKey(key),
		"state", string(jobs.StateActive),
		"updated_at", now.Format(time.RFC3339Nano),
	).Err(); err != nil {
		return nil, &BackendError{Op: "claim", Err: err}
	}

	return q.FindByExactKey(ctx, key)
}

// SetProgress persists a progress value for the job.
func (q *RedisQueue) SetProgress(ctx context.Context, key string, progress int) error {
	err := q.rdb.HSet(ctx, q.jobKey(key),
		"progress", progress,
		"updated_at", time.Now().UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return &BackendError{Op: "set progress", Err: err}
	}
	return nil
}

// Progress reads the persisted progress. A missing job reports 100: a
// completed-and-reaped job cannot be told apart from one that never
// existed, and the polling path treats both as done.
func (q *RedisQueue) Progress(ctx context.Context, key string) (int, error) {
	val, err := q.rdb.HGet(ctx, q.jobKey(key), "progress").Result()
	if errors.Is(err, redis.Nil) {
		return 100, nil
	}
	if err != nil {
		return 0, &BackendError{Op: "get progress", Err: err}
	}

	progress, err := strconv.Atoi(val)
	if err != nil {
		return 0, &BackendError{Op: "get progress", Err: err}
	}
	return progress, nil
}

// Complete marks the job completed and removes it from the active list.
func (q *RedisQueue) Complete(ctx context.Context, key, result string) error {
	pipe := q.rdb.TxPipeline()
	pipe.HSet(ctx, q.jobKey(key),
		"state", string(jobs.StateCompleted),
		"result", result,
		"updated_at", time.Now().UTC().Format(time.RFC3339Nano),
	)
	pipe.LRem(ctx, q.activeKey(), 0, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return &BackendError{Op: "complete", Err: err}
	}
	return nil
}

// Fail marks the job failed and removes it from the active list.
func (q *RedisQueue) Fail(ctx context.Context, key, errMsg string) error {
	pipe := q.rdb.TxPipeline()
	pipe.HSet(ctx, q.jobKey(key),
		"state", string(jobs.StateFailed),
		"error", errMsg,
		"updated_at", time.Now().UTC().Format(time.RFC3339Nano),
	)
	pipe.LRem(ctx, q.activeKey(), 0, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return &BackendError{Op: "fail", Err: err}
	}
	return nil
}

// FindByExactKey loads a job by its queue key.
func (q *RedisQueue) FindByExactKey(ctx context.Context, key string) (*jobs.Job, error) {
	fields, err := q.rdb.HGetAll(ctx, q.jobKey(key)).Result()
	if err != nil {
		return nil, &BackendError{Op: "find", Err: err}
	}
	if len(fields) == 0 {
		return nil, jobs.ErrNotFound
	}
	return jobFromHash(key, fields)
}

// FindByNamePrefix walks the recency index and returns the first job whose
// name starts with prefix. O(scanLimit) by design; jobs older than the scan
// window are not found this way.
func (q *RedisQueue) FindByNamePrefix(ctx context.Context, prefix string, scanLimit int) (*jobs.Job, error) {
	if scanLimit <= 0 {
		scanLimit = q.scanLimit
	}

	keys, err := q.rdb.LRange(ctx, q.indexKey(), 0, int64(scanLimit-1)).Result()
	if err != nil {
		return nil, &BackendError{Op: "scan", Err: err}
	}

	for _, key := range keys {
		name, err := q.rdb.HGet(ctx, q.jobKey(key), "name").Result()
		if errors.Is(err, redis.Nil) {
			// Reaped job still referenced by the index.
			continue
		}
		if err != nil {
			return nil, &BackendError{Op: "scan", Err: err}
		}
		if strings.HasPrefix(name, prefix) {
			return q.FindByExactKey(ctx, key)
		}
	}

	return nil, jobs.ErrNotFound
}

// Find resolves a locator: exact key lookup when the caller supplied an
// explicit job id, falling back to the prefix scan so that an id used as a
// name component (or a bare channel id) still resolves.
func (q *RedisQueue) Find(ctx context.Context, loc jobs.Locator) (*jobs.Job, error) {
	if key, ok := loc.ExactKey(); ok {
		job, err := q.FindByExactKey(ctx, key)
		if err == nil {
			return job, nil
		}
		if !errors.Is(err, jobs.ErrNotFound) {
			return nil, err
		}
	}
	return q.FindByNamePrefix(ctx, loc.NamePrefix(), q.scanLimit)
}

func jobFromHash(key string, fields map[string]string) (*jobs.Job, error) {
	progress, err := strconv.Atoi(fields["progress"])
	if err != nil {
		return nil, &BackendError{Op: "find", Err: err}
	}

	job := &jobs.Job{
		Key:      key,
		Name:     fields["name"],
		State:    jobs.State(fields["state"]),
		Progress: progress,
		Payload:  fields["payload"],
		Result:   fields["result"],
		Error:    fields["error"],
	}

	if t, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		job.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["updated_at"]); err == nil {
		job.UpdatedAt = t
	}

	return job, nil
}

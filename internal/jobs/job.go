package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by queue lookups when no job matches. Callers on
// the polling path translate it to progress 100: a completed-and-reaped job
// is indistinguishable from one that never existed.
var ErrNotFound = errors.New("job not found")

// State represents the current state of a job.
type State string

const (
	StateWaiting   State = "waiting"
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// NamePrefix is shared by every upsert job name. The worker ignores jobs
// whose name does not carry it, so other job types can share the queue.
const NamePrefix = "upsertVideos-"

// Video is one record to be upserted. Snippet and Status are opaque and
// passed through to the record store verbatim.
type Video struct {
	ID        string          `json:"id"`
	ChannelID string          `json:"channelId"`
	Snippet   json.RawMessage `json:"snippet,omitempty"`
	Status    json.RawMessage `json:"status,omitempty"`
}

// Payload is the batch a job carries, stored on the queue as JSON.
type Payload struct {
	ChannelID string  `json:"channelId,omitempty"`
	Videos    []Video `json:"videos"`
}

// Job represents one queued batch of video upserts.
type Job struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	State     State     `json:"state"`
	Progress  int       `json:"progress"`
	Payload   string    `json:"payload"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// String returns a string representation of the job.
func (j *Job) String() string {
	return fmt.Sprintf("Job{Key: %s, Name: %s, State: %s, Progress: %d}",
		j.Key, j.Name, j.State, j.Progress)
}

// DecodePayload unmarshals the stored payload. A decode failure is fatal for
// the job: the worker marks it failed rather than guessing at the batch.
func (j *Job) DecodePayload() (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(j.Payload), &p); err != nil {
		return nil, fmt.Errorf("malformed job payload: %w", err)
	}
	return &p, nil
}

// Outcome records the result of one record upsert attempt.
type Outcome struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Summary aggregates the per-record outcomes of a completed job. It is
// persisted as the job result so failure detail survives the run.
type Summary struct {
	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"outcomes,omitempty"`
}

// Encode marshals the summary for storage as the job result.
func (s *Summary) Encode() string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
}

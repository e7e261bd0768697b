package nats

import "github.com/upsert-monster/internal/jobs"

// BatchMessage is a video batch submission carried over NATS. It mirrors
// the HTTP createJob body so producers can use either path.
type BatchMessage struct {
	JobID     string       `json:"jobId,omitempty"`
	ChannelID string       `json:"channelId,omitempty"`
	Date      string       `json:"date,omitempty"`
	Videos    []jobs.Video `json:"videos"`
}

// Locator derives the addressing fields of the submission.
func (m *BatchMessage) Locator() jobs.Locator {
	return jobs.Locator{JobID: m.JobID, ChannelID: m.ChannelID, Date: m.Date}
}

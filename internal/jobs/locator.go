package jobs

import "errors"

// Locator identifies a job by whichever addressing fields the caller has:
// an explicit job id, or the composite channel id + date the job was
// created under. The queue resolves a locator through a single lookup path
// (exact key first when a job id is present, then a name-prefix scan).
type Locator struct {
	JobID     string
	ChannelID string
	Date      string
}

var errNoIdentity = errors.New("either jobId or channelId and date are required")

// Validate checks that the locator carries at least one complete
// addressing mode.
func (l Locator) Validate() error {
	if l.JobID != "" {
		return nil
	}
	if l.ChannelID != "" && l.Date != "" {
		return nil
	}
	return errNoIdentity
}

// Name derives the queue job name for a new submission.
func (l Locator) Name() string {
	if l.JobID != "" {
		return NamePrefix + l.JobID
	}
	return NamePrefix + l.ChannelID + "-" + l.Date
}

// NamePrefix derives the prefix used to find an existing job when the
// caller does not hold the exact queue key. A bare job id matches both the
// name it created (upsertVideos-<jobId>) and, when the id is a channel id,
// any composite name created under that channel.
func (l Locator) NamePrefix() string {
	if l.JobID != "" {
		return NamePrefix + l.JobID
	}
	return NamePrefix + l.ChannelID + "-" + l.Date
}

// ExactKey returns the candidate queue key for an exact lookup, if the
// locator carries one.
func (l Locator) ExactKey() (string, bool) {
	if l.JobID != "" {
		return l.JobID, true
	}
	return "", false
}

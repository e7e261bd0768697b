package notify

import "github.com/upsert-monster/internal/logger"

// LogNotifier writes one log line per lifecycle transition.
type LogNotifier struct{}

func (LogNotifier) JobAdded(jobKey, name string) {
	logger.WithJobKey(jobKey).Info().Str("name", name).Msg("[ADDED] Job added")
}

func (LogNotifier) JobStarted(jobKey string) {
	logger.WithJobKey(jobKey).Info().Msg("[STARTED] Job has been started")
}

func (LogNotifier) JobProgress(jobKey string, progress int) {
	logger.WithJobKey(jobKey).Info().Int("progress", progress).Msg("[PROGRESS] Job progress updated")
}

func (LogNotifier) RecordFailed(jobKey, recordID string, err error) {
	logger.WithJobKey(jobKey).Error().Str("video_id", recordID).Err(err).Msg("[RECORD] Error upserting video")
}

func (LogNotifier) JobCompleted(jobKey string) {
	logger.WithJobKey(jobKey).Info().Msg("[COMPLETED] Job has been completed")
}

func (LogNotifier) JobFailed(jobKey string, err error) {
	logger.WithJobKey(jobKey).Error().Err(err).Msg("[FAILED] Job has been failed")
}

func (LogNotifier) Drained() {
	logger.Logger.Info().Msg("[DRAINED] Waiting for jobs")
}

func (LogNotifier) QueueError(err error) {
	logger.Logger.Error().Err(err).Msg("[ERROR] An error occurred by the queue")
}

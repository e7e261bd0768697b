package websocket

import (
	"encoding/json"

	"github.com/upsert-monster/internal/logger"
)

// Notifier streams job lifecycle events to connected websocket clients.
// Fire-and-forget: a failed or slow broadcast never touches processing.
type Notifier struct {
	hub *Hub
}

// NewNotifier creates a websocket notifier on the given hub.
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) broadcast(eventType string, fields map[string]interface{}) {
	payload := map[string]interface{}{"type": eventType}
	for k, v := range fields {
		payload[k] = v
	}

	message, err := json.Marshal(payload)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to marshal websocket event")
		return
	}
	n.hub.Broadcast(message)
}

func (n *Notifier) JobAdded(jobKey, name string) {
	n.broadcast("job_added", map[string]interface{}{"job_key": jobKey, "name": name})
}

func (n *Notifier) JobStarted(jobKey string) {
	n.broadcast("job_started", map[string]interface{}{"job_key": jobKey})
}

func (n *Notifier) JobProgress(jobKey string, progress int) {
	n.broadcast("job_progress", map[string]interface{}{"job_key": jobKey, "progress": progress})
}

func (n *Notifier) RecordFailed(jobKey, recordID string, err error) {
	n.broadcast("record_failed", map[string]interface{}{
		"job_key": jobKey, "video_id": recordID, "error": err.Error(),
	})
}

func (n *Notifier) JobCompleted(jobKey string) {
	n.broadcast("job_completed", map[string]interface{}{"job_key": jobKey})
}

func (n *Notifier) JobFailed(jobKey string, err error) {
	n.broadcast("job_failed", map[string]interface{}{"job_key": jobKey, "error": err.Error()})
}

func (n *Notifier) Drained() {
	n.broadcast("drained", nil)
}

func (n *Notifier) QueueError(err error) {
	n.broadcast("queue_error", map[string]interface{}{"error": err.Error()})
}

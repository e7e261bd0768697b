package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/upsert-monster/internal/jobs"
	"github.com/upsert-monster/internal/logger"
	"github.com/upsert-monster/internal/nats"
	"github.com/upsert-monster/internal/queue"
	"github.com/upsert-monster/internal/websocket"
)

func AddRoutes(
	mux *http.ServeMux,
	q queue.Queue,
	natsClient *nats.Client,
	hub *websocket.Hub,
) {
	mux.HandleFunc("/createJob", correlationMiddleware(handleCreateJob(q, natsClient)))
	mux.HandleFunc("/getProgress", correlationMiddleware(handleGetProgress(q)))
	if hub != nil {
		mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			websocket.HandleWebSocket(hub, w, r)
		})
	}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", HandleHealth)
	mux.HandleFunc("/health/ready", HandleReadiness)
	mux.HandleFunc("/health/live", HandleLiveness)
	mux.HandleFunc("/", handleRoot)
}

func correlationMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		ctx := r.Context()
		ctx = context.WithValue(ctx, "correlation_id", correlationID)
		r = r.WithContext(ctx)
		next(w, r)
	}
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte("UpsertMonster is running!"))
}

type createJobRequest struct {
	JobID     string       `json:"jobId"`
	ChannelID string       `json:"channelId"`
	Date      string       `json:"date"`
	Videos    []jobs.Video `json:"videos"`
}

type createJobResponse struct {
	Key   string `json:"key,omitempty"`
	Name  string `json:"name"`
	State string `json:"state"`
}

func handleCreateJob(q queue.Queue, natsClient *nats.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		correlationID := getCorrelationID(r.Context())
		log := logger.WithCorrelationID(correlationID)

		var req createJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error().Err(err).Msg("Invalid JSON request")
			http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		loc := jobs.Locator{JobID: req.JobID, ChannelID: req.ChannelID, Date: req.Date}
		if err := loc.Validate(); err != nil {
			log.Warn().Msg("Job identity missing")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Videos == nil {
			log.Warn().Msg("Videos missing")
			http.Error(w, "videos field is required", http.StatusBadRequest)
			return
		}

		name := loc.Name()

		if natsClient != nil {
			msg := &nats.BatchMessage{
				JobID:     req.JobID,
				ChannelID: req.ChannelID,
				Date:      req.Date,
				Videos:    req.Videos,
			}
			if err := natsClient.PublishBatch(msg); err != nil {
				log.Error().Err(err).Msg("Failed to submit batch via NATS")
				http.Error(w, "Failed to submit job: "+err.Error(), http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(createJobResponse{Name: name, State: string(jobs.StateWaiting)})
			log.Info().Str("name", name).Msg("Batch submitted via NATS")
			return
		}

		payload := &jobs.Payload{ChannelID: req.ChannelID, Videos: req.Videos}
		job, err := q.Enqueue(r.Context(), name, payload)
		if err != nil {
			log.Error().Err(err).Msg("Failed to enqueue job")
			http.Error(w, "Failed to submit job: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(createJobResponse{
			Key:   job.Key,
			Name:  job.Name,
			State: string(job.State),
		})
		log.Info().Str("job_key", job.Key).Str("name", job.Name).Msg("Job enqueued")
	}
}

type progressResponse struct {
	Progress int `json:"progress"`
}

func handleGetProgress(q queue.Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		correlationID := getCorrelationID(r.Context())
		log := logger.WithCorrelationID(correlationID)

		query := r.URL.Query()
		loc := jobs.Locator{
			JobID:     query.Get("jobId"),
			ChannelID: query.Get("channelId"),
			Date:      query.Get("date"),
		}
		if err := loc.Validate(); err != nil {
			log.Warn().Msg("Poll without job identity")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		job, err := q.Find(r.Context(), loc)
		if errors.Is(err, jobs.ErrNotFound) {
			// Completed-and-reaped and never-existed look the same; both
			// report done.
			writeProgress(w, 100)
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to look up job")
			http.Error(w, "Failed to look up job: "+err.Error(), http.StatusInternalServerError)
			return
		}

		log.Info().Str("job_key", job.Key).Int("progress", job.Progress).Msg("Returning progress")
		writeProgress(w, job.Progress)
	}
}

func writeProgress(w http.ResponseWriter, progress int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(progressResponse{Progress: progress})
}

func getCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value("correlation_id").(string); ok {
		return id
	}
	return ""
}

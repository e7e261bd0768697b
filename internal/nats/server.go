package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/upsert-monster/internal/jobs"
	"github.com/upsert-monster/internal/logger"
	"github.com/upsert-monster/internal/queue"
)

// Server consumes batch submissions from NATS and enqueues them. It gives
// non-HTTP producers the same validation and name derivation as the API.
type Server struct {
	conn  *nats.Conn
	sub   *nats.Subscription
	queue queue.Queue
}

func NewServer(url string, q queue.Queue) (*Server, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Server{
		conn:  conn,
		queue: q,
	}, nil
}

func (s *Server) Subscribe() error {
	sub, err := s.conn.Subscribe(BatchSubmitSubject, func(msg *nats.Msg) {
		var batch BatchMessage
		if err := json.Unmarshal(msg.Data, &batch); err != nil {
			logger.Logger.Error().Err(err).Msg("Dropping malformed batch submission")
			return
		}

		loc := batch.Locator()
		if err := loc.Validate(); err != nil {
			logger.Logger.Warn().Err(err).Msg("Dropping batch submission without identity")
			return
		}
		if batch.Videos == nil {
			logger.Logger.Warn().Msg("Dropping batch submission without videos")
			return
		}

		payload := &jobs.Payload{ChannelID: batch.ChannelID, Videos: batch.Videos}
		job, err := s.queue.Enqueue(context.Background(), loc.Name(), payload)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to enqueue batch from NATS")
			return
		}
		logger.WithJobKey(job.Key).Info().Str("name", job.Name).Msg("Batch enqueued from NATS")
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to NATS: %w", err)
	}

	s.sub = sub
	return nil
}

func (s *Server) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}

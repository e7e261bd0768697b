package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/upsert-monster/internal/logger"
	"github.com/upsert-monster/internal/nats"
	"github.com/upsert-monster/internal/queue"
	"github.com/upsert-monster/internal/websocket"
)

func NewServer(q queue.Queue, natsClient *nats.Client, hub *websocket.Hub, port string) *Server {
	return &Server{
		queue:      q,
		natsClient: natsClient,
		hub:        hub,
		port:       port,
	}
}

type Server struct {
	queue      queue.Queue
	natsClient *nats.Client
	hub        *websocket.Hub
	port       string
}

func (s *Server) Start() {
	addr := fmt.Sprintf(":%s", s.port)
	logger.Logger.Info().Str("addr", addr).Msg("Starting server")

	mux := http.NewServeMux()
	AddRoutes(mux, s.queue, s.natsClient, s.hub)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

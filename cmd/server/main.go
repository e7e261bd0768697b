package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/upsert-monster/internal/api"
	"github.com/upsert-monster/internal/config"
	"github.com/upsert-monster/internal/logger"
	"github.com/upsert-monster/internal/nats"
	"github.com/upsert-monster/internal/notify"
	"github.com/upsert-monster/internal/queue"
	"github.com/upsert-monster/internal/websocket"
)

func main() {
	cfg := config.Load()
	logger.Init("upsert-monster-api")
	logger.Logger.Info().Msg("Starting UpsertMonster API")

	redisClient, err := queue.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	api.SetRedisConnection(redisClient)

	hub := websocket.NewHub()
	go hub.Run()

	notifier := notify.Multi{
		notify.LogNotifier{},
		notify.MetricsNotifier{},
		websocket.NewNotifier(hub),
	}

	q := queue.NewRedisQueue(queue.RedisQueueOptions{
		Client:    redisClient,
		KeyPrefix: cfg.Redis.KeyPrefix,
		ScanLimit: cfg.Queue.ScanLimit,
		Notifier:  notifier,
	})

	var natsClient *nats.Client
	if cfg.NATS.Enabled {
		natsClient, err = nats.NewClient(cfg.NATS.URL)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer natsClient.Close()
		logger.Logger.Info().Str("url", cfg.NATS.URL).Msg("Submitting batches via NATS")
	}

	server := api.NewServer(q, natsClient, hub, cfg.Server.Port)
	go server.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Logger.Info().Msg("Shutting down gracefully...")
	logger.Logger.Info().Msg("Server stopped")
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/upsert-monster/internal/config"
	"github.com/upsert-monster/internal/db"
	"github.com/upsert-monster/internal/logger"
	"github.com/upsert-monster/internal/nats"
	"github.com/upsert-monster/internal/notify"
	"github.com/upsert-monster/internal/queue"
	"github.com/upsert-monster/internal/videostore"
	"github.com/upsert-monster/internal/worker"
)

const migrationsDir = "migrations"

func main() {
	cfg := config.Load()
	logger.Init("upsert-monster-worker")
	logger.Logger.Info().Msg("Starting UpsertMonster worker")

	redisClient, err := queue.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	database, err := db.Connect(cfg.Postgres)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	if err := db.RunMigrations(database, migrationsDir); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	notifier := notify.Multi{
		notify.LogNotifier{},
		notify.MetricsNotifier{},
	}

	q := queue.NewRedisQueue(queue.RedisQueueOptions{
		Client:    redisClient,
		KeyPrefix: cfg.Redis.KeyPrefix,
		ScanLimit: cfg.Queue.ScanLimit,
		Notifier:  notifier,
	})

	store := videostore.NewPostgresStore(database)
	processor := worker.NewUpsertProcessor(q, store, notifier)

	pool := worker.NewPool(worker.PoolOptions{
		Queue:        q,
		Processor:    processor,
		Notifier:     notifier,
		WorkerCount:  cfg.Worker.Count,
		PollInterval: cfg.Worker.PollInterval,
	})
	pool.Start()

	var natsServer *nats.Server
	if cfg.NATS.Enabled {
		natsServer, err = nats.NewServer(cfg.NATS.URL, q)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create NATS consumer")
		}
		if err := natsServer.Subscribe(); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to subscribe to NATS")
		}
		logger.Logger.Info().Str("url", cfg.NATS.URL).Msg("NATS consumer started")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Logger.Info().Msg("Shutting down gracefully...")
	pool.Stop()
	if natsServer != nil {
		natsServer.Close()
	}
	logger.Logger.Info().Msg("Worker stopped")
}

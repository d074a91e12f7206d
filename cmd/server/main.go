package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/beatshub/interaction-service/internal/api"
	"github.com/beatshub/interaction-service/internal/core/service"
	"github.com/beatshub/interaction-service/internal/infrastructure/broker/kafka"
	mongodb "github.com/beatshub/interaction-service/internal/infrastructure/db/mongo"
	redisdb "github.com/beatshub/interaction-service/internal/infrastructure/db/redis"
	"github.com/beatshub/interaction-service/internal/pkg/config"
	"github.com/beatshub/interaction-service/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	// --- Repositories ---
	userRepo := mongodb.NewUserProjectionRepository(db)
	trackRepo := mongodb.NewTrackProjectionRepository(db)
	commentRepo := mongodb.NewCommentRepository(db)
	ratingRepo := mongodb.NewRatingRepository(db)
	playlistRepo := mongodb.NewPlaylistRepository(db)
	reportRepo := mongodb.NewReportRepository(db)

	if err := reportRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure report indexes")
	}

	// --- Broker ---
	socialPublisher := kafka.NewEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.SocialTopic, log)
	dlqPublisher := kafka.NewDeadLetterPublisher(cfg.Kafka.Brokers, cfg.Kafka.DeadLetterTopic, log)
	probe := kafka.NewProbe(cfg.Kafka.Brokers)

	// --- Services ---
	projector := service.NewProjector(userRepo, trackRepo, commentRepo, ratingRepo, playlistRepo, log)
	reportService := service.NewReportService(reportRepo, commentRepo, ratingRepo, playlistRepo, socialPublisher, log)

	// --- Consumer supervisor ---
	supervisor := kafka.NewSupervisor(kafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		GroupID:       cfg.Kafka.GroupID,
		Topics:        []string{cfg.Kafka.BeatsTopic, cfg.Kafka.UsersTopic},
		MaxRetries:    cfg.Kafka.MaxRetries,
		RetryDelay:    cfg.Kafka.RetryDelay,
		CooldownDelay: cfg.Kafka.CooldownDelay,
	}, projector, dlqPublisher, redisdb.NewMessageDedup(rdb), log)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		supervisor.Run(ctx)
	}()

	// --- HTTP ---
	e := api.NewRouter(api.RouterConfig{
		Reports:          reportService,
		Mongo:            db,
		Redis:            rdb,
		Broker:           probe,
		JWTSecret:        cfg.JWTSecret,
		ProjectionChecks: cfg.ProjectionChecksEnabled,
		Logger:           log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("interaction service started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	// Let the consumer finish its in-flight message before disconnecting.
	<-consumerDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}
	if err := socialPublisher.Close(); err != nil {
		log.Warn().Err(err).Msg("social publisher close failed")
	}
	if err := dlqPublisher.Close(); err != nil {
		log.Warn().Err(err).Msg("dead-letter publisher close failed")
	}
}

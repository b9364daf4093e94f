package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/api"
	"github.com/proptycoon/backend/internal/config"
	"github.com/proptycoon/backend/internal/db/mongodb"
	redisdb "github.com/proptycoon/backend/internal/db/redis"
	"github.com/proptycoon/backend/internal/game/engine"
	"github.com/proptycoon/backend/internal/game/manager"
	gamews "github.com/proptycoon/backend/internal/game/websocket"
	"github.com/proptycoon/backend/internal/queue"
)

func main() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalw("failed to load configuration", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backing services
	mongoClient, err := mongodb.CreateClient(ctx, cfg.MongoDB.URI, logger)
	if err != nil {
		logger.Fatalw("failed to connect to MongoDB", "error", err)
	}
	defer func() {
		if err := mongoClient.Client().Disconnect(context.Background()); err != nil {
			logger.Errorw("failed to disconnect from MongoDB", "error", err)
		}
	}()

	redisClient, err := redisdb.CreateClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatalw("failed to connect to Redis", "error", err)
	}
	defer func() {
		if err := redisClient.Client().Close(); err != nil {
			logger.Errorw("failed to close Redis client", "error", err)
		}
	}()

	// Storage
	db := mongoClient.Database(cfg.MongoDB.Database)
	gameStore := mongodb.NewGameStore(db, cfg.MongoDB.GamesColl, logger)
	if err := gameStore.EnsureIndexes(ctx); err != nil {
		logger.Fatalw("failed to ensure game indexes", "error", err)
	}
	userStore := mongodb.NewUserStore(db)

	// Rules engine
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	eng := engine.New(engine.DefaultBoard(), engine.DefaultDecks(), engine.NewRoller(rng), cfg.Game.InitialBalance, logger)

	// Notification pipeline and game lifecycle
	redisQueue := queue.NewRedisQueue(redisClient.Client(), logger)
	gameManager := manager.NewGameManager(ctx, gameStore, redisQueue, eng, cfg.Game, logger)

	hub := gamews.NewHub(gameManager, logger)
	go hub.Run()

	worker := queue.NewWorker(redisQueue, hub, logger)
	worker.Start()

	server := api.NewServer(cfg, logger, gameManager, hub, userStore, mongoClient, redisClient)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatalw("server error", "error", err)
		}
	}()

	// Block until a shutdown signal arrives
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("server shutdown failed", "error", err)
	}
	worker.Stop()
	hub.Stop()
	cancel()

	logger.Info("shutdown complete")
}

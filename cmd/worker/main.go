// Package main runs the background analysis worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hotelsight/backend/config"
	"github.com/hotelsight/backend/internal/analytics"
	"github.com/hotelsight/backend/internal/hotels"
	"github.com/hotelsight/backend/internal/live"
	"github.com/hotelsight/backend/internal/metrics"
	"github.com/hotelsight/backend/internal/worker"
	"github.com/hotelsight/backend/pkg/database"
	"github.com/hotelsight/backend/pkg/queue"
	"github.com/hotelsight/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	metricRepo := metrics.NewRepository(pool)
	hotelRepo := hotels.NewRepository(pool)
	selectionStore := hotels.NewSelectionStore(rdb.Client)
	resultStore := analytics.NewResultStore(rdb.Client, time.Duration(cfg.Analytics.ResultTTLMinutes)*time.Minute)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// The worker has no local WebSocket clients; the hub is publish-only and
	// server instances fan events out to their own connections.
	redisPubSub := live.NewRedisPubSub(rdb.Client, logger)
	hub := live.NewHub(logger, redisPubSub, nil)

	processor := worker.NewAnalysisProcessor(metricRepo, hotelRepo, selectionStore, resultStore, hub, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

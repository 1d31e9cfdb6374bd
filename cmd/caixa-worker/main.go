package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"caixa/internal/amqp"
	"caixa/internal/config"
	"caixa/internal/gateway"
	"caixa/internal/gateway/memory"
	"caixa/internal/gateway/postgres"
	applog "caixa/internal/log"
	"caixa/internal/storage"
	"caixa/internal/worker"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("starting caixa-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}
	if cfg.DefaultUserID == "" {
		logger.Error("DEFAULT_USER_ID is required for the mirror worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var gw gateway.Gateway
	switch cfg.DataBackend {
	case "postgres":
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		gw = pg
	default:
		gw = memory.New()
	}

	cache, err := storage.NewSQLiteCache(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open snapshot cache", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer cache.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	mirror := worker.NewMirrorWorker(gw, cache, cfg.DefaultUserID, cfg.MirrorInterval)
	logger.Info("mirror worker running", "user_id", cfg.DefaultUserID, "interval", cfg.MirrorInterval)

	if err := mirror.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mirror worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("worker stopped gracefully")
}

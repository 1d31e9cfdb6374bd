package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"caixa/internal/amqp"
	"caixa/internal/auth"
	"caixa/internal/config"
	"caixa/internal/export/google"
	"caixa/internal/gateway"
	"caixa/internal/gateway/memory"
	"caixa/internal/gateway/postgres"
	apphttp "caixa/internal/http"
	applog "caixa/internal/log"
	"caixa/internal/storage"
	"caixa/internal/store"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
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
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure postgres schema", "error", err)
			os.Exit(1)
		}
		gw = pg
		logger.Info("initialized postgres backend")
	default:
		gw = memory.New()
		logger.Info("initialized memory backend")
	}

	cache, err := storage.NewSQLiteCache(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open snapshot cache", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer cache.Close()

	opts := store.Options{Cache: cache}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		opts.Publisher = amqpClient
		logger.Info("change event publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("change event publishing disabled - no AMQP_URL provided")
	}

	sessions := auth.ContextSource{Default: cfg.DefaultUserID}
	st := store.New(gw, sessions, opts)

	// Warm the snapshot: cached copy first, then the remote backend when a
	// default user is configured.
	st.RestoreSnapshot(ctx)
	if cfg.DefaultUserID != "" {
		if err := st.Initialize(ctx); err != nil {
			logger.Warn("initial remote fetch failed, serving cached snapshot", "error", err)
		}
	}

	var exporter *google.Client
	if cfg.GoogleSpreadsheetID != "" {
		exporter, err = google.NewFromEnv(ctx)
		if err != nil {
			logger.Error("failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		logger.Info("report export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("report export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, st, gw, exporter)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("starting caixa server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/config"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/directory"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/infra"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/logging"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/routes"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		logger.Warn("no database configured, using in-memory user store")
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	} else {
		logger.Warn("no redis configured, idempotency and rate limiting disabled")
	}

	directoryClient := directory.NewClient(cfg.DirectoryBaseURL, cfg.DirectoryAPIKey, cfg.UpstreamTimeout)
	if !directoryClient.Enabled() {
		logger.Info("directory sync disabled, companion directory not configured")
	}
	syncer := directory.NewSyncer(directoryClient, logger)

	srv, err := server.New(cfg, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger, Syncer: syncer}, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	// Let in-flight directory syncs report their outcomes before exit.
	syncer.Wait()

	logger.Info("server exited cleanly")
}

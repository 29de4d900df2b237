package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/rpschat/internal/api"
	"github.com/mcoot/rpschat/internal/config"
	"github.com/mcoot/rpschat/internal/factory"
	redisstorage "github.com/mcoot/rpschat/internal/storage/redis"
	"github.com/mcoot/rpschat/internal/transport/tcp"
)

func main() {
	// Load configuration from .env and the environment
	conf, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := conf.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	// Build factory config
	tcpCfg := tcp.DefaultConfig()
	tcpCfg.Addr = conf.ListenAddr
	httpCfg := api.DefaultServerConfig()
	httpCfg.Addr = conf.HTTPAddr

	cfg := factory.Config{
		Logger:      logger,
		StorageType: conf.Storage,
		NATSURL:     conf.NATSURL,
		TCP:         tcpCfg,
		HTTP:        httpCfg,
		SendBuffer:  conf.SendBuffer,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = conf.RedisURL
		redisCfg.MatchTTL = conf.HistoryTTL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh, err := app.Start()
	if err != nil {
		logger.Error("failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server started",
		slog.String("instance", app.InstanceID),
		slog.String("tcp_addr", app.TCPServer.Addr()),
		slog.String("http_addr", app.HTTPServer.Addr()),
		slog.String("storage", cfg.StorageType),
	)

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		logger.Error("server error", slog.String("error", err.Error()))
		exitCode = 1
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

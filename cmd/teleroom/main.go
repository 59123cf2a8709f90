package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/teleroom/teleroom/internal/server"
	"github.com/teleroom/teleroom/internal/store"
	"github.com/teleroom/teleroom/pkg/config"
	"github.com/teleroom/teleroom/pkg/logging"
)

func main() {
	logger := logging.New(logging.LevelInfo)
	slog.SetDefault(logger)

	cfg, err := config.Load(logger, "config")
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger = logging.New(logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	var st store.Store
	if cfg.Store.RedisAddr != "" {
		logger.Info("using redis message store", slog.String("addr", cfg.Store.RedisAddr))
		st = store.NewRedis(cfg.Store.RedisAddr, cfg.Store.HistoryCap)
	} else {
		logger.Info("using in-memory message store")
		st = store.NewMemory(cfg.Store.HistoryCap)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := server.NewApp(logger, ctx, cfg, st)
	if err := app.Run(); err != nil {
		logger.Error("application run failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application shut down successfully.")
}

// Command shapleyd serves exact Shapley value queries over websockets.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shenxiangzhuang/shapley/config"
	"github.com/shenxiangzhuang/shapley/network"
	"github.com/shenxiangzhuang/shapley/room"
)

func main() {
	if err := run(); err != nil {
		slog.Error("shapleyd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rooms := room.NewManager(cfg.MaxPlayers, logger)
	defer rooms.Close()

	if err := network.NewServer(cfg, rooms, logger).Run(ctx); err != nil {
		return err
	}
	logger.Info("shutting down")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"adcanvas/internal/gateway/app"
	"adcanvas/internal/gateway/config"
)

const shutdownGrace = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := app.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.Start() }()

	select {
	case err = <-serveErr:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("signal received, draining")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if serr := a.Shutdown(sctx); serr != nil {
		logger.Error("shutdown incomplete", zap.Error(serr))
		if err == nil {
			err = serr
		}
	}
	logger.Info("gateway exited")
	return err
}

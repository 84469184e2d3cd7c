package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adcanvas/internal/gateway/app"
	"adcanvas/internal/gateway/config"
)

func serveCmd() *cobra.Command {
	var (
		port  string
		grace time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the studio server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if cmd.Flags().Changed("port") || cfg.Port == "" {
				cfg.Port = port
				if !strings.Contains(cfg.Port, ":") {
					cfg.Port = ":" + cfg.Port
				}
			}
			logger, err := app.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			brand.Printf("adcanvas studio listening on %s\n", cfg.Port)

			errCh := make(chan error, 1)
			go func() { errCh <- a.Start() }()
			select {
			case err = <-errCh:
			case <-ctx.Done():
			}

			logger.Info("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), grace)
			defer cancel()
			if serr := a.Shutdown(sctx); serr != nil {
				logger.Error("server forced to shutdown", zap.Error(serr))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&port, "port", ":8081", "listen address or port")
	cmd.Flags().DurationVar(&grace, "grace", 10*time.Second, "graceful shutdown timeout")
	return cmd
}

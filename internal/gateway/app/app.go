package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"adcanvas/internal/board"
	"adcanvas/internal/catalog"
	"adcanvas/internal/gateway/config"
	"adcanvas/internal/gateway/handler"
	"adcanvas/internal/gateway/handler/rpc"
	"adcanvas/internal/gateway/handler/ws"
	"adcanvas/internal/gateway/server"
	"adcanvas/internal/gateway/service/publish"
	gatewaystudio "adcanvas/internal/gateway/service/studio"
	"adcanvas/internal/llm"
	"adcanvas/internal/observability"
)

type App struct {
	server   *server.Server
	registry *board.Registry
	provider llm.Provider
	stores   *gatewayStores
	studio   *gatewaystudio.Service
	logger   *zap.Logger
}

// NewLogger picks production JSON logging or the development console
// encoder from the environment name.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := observability.NewCollector("adcanvas")

	// Dependencies
	cat, err := catalog.Load(cfg.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	provider, err := llm.New(ctx, cfg.LLM(), logger.Named("llm"), metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to init llm provider: %w", err)
	}
	stores, err := initStores(ctx, cfg, metrics, logger)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}
	registry := board.NewRegistry(board.Deps{
		Provider:  provider,
		Catalog:   cat,
		Logger:    logger.Named("board"),
		Metrics:   metrics,
		Timeout:   cfg.Limits.TaskTimeout,
		MaxUpload: cfg.Limits.MaxUploadBytes,
	})
	publishSvc := publish.New(stores.gallery, cat, logger.Named("publish"))
	studioSvc := gatewaystudio.New(registry, stores.boards, publishSvc, cat, logger.Named("studio"))

	// Routing & Server
	mux := server.NewMux(server.Handlers{
		Studio:      rpc.NewStudioHandler(studioSvc),
		Stream:      ws.NewBoardStreamHandler(studioSvc, metrics, logger.Named("ws"), cfg.Limits.StreamBuffer),
		Thumbnail:   handler.NewThumbnailHandler(studioSvc, metrics, logger),
		Gallery:     handler.NewGalleryHandler(publishSvc),
		Metrics:     metrics.Handler(),
		RPCOptions:  rpc.HandlerOptions(logger.Named("rpc"), readLimit(cfg.Limits.MaxUploadBytes)),
		CORSOrigins: cfg.CORSOrigins,
		Instrument:  metrics,
	})
	srv := server.New(cfg.Port, mux, logger)

	logger.Info("gateway ready",
		zap.String("env", cfg.Env),
		zap.String("llm", provider.Name()),
		zap.Bool("generation", provider.Configured()),
	)
	return &App{
		server:   srv,
		registry: registry,
		provider: provider,
		stores:   stores,
		studio:   studioSvc,
		logger:   logger,
	}, nil
}

// readLimit leaves room for the base64 expansion of an upload.
func readLimit(maxUpload int64) int {
	if maxUpload <= 0 {
		return 0
	}
	return int(maxUpload/3*4) + 64<<10
}

func (a *App) Start() error {
	return a.server.Start()
}

// Shutdown stops accepting requests, saves every live board and releases
// the backends.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	for _, b := range a.registry.List() {
		if _, serr := a.studio.SaveBoard(ctx, &gatewaystudio.SaveBoardRequest{BoardID: b.ID}); serr != nil {
			a.logger.Warn("save board on shutdown", zap.String("board_id", b.ID), zap.Error(serr))
		}
	}
	a.registry.Close()
	err = errors.Join(err, a.provider.Close())
	if c, ok := a.stores.boards.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

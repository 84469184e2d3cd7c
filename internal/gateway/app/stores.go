package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	gallerycache "adcanvas/internal/cache/gallery"
	"adcanvas/internal/gateway/config"
	"adcanvas/internal/gateway/repository/boardstore"
	galleryrepo "adcanvas/internal/gateway/repository/gallery"
)

type gatewayStores struct {
	gallery galleryrepo.Store
	boards  boardstore.Store
}

func initStores(ctx context.Context, cfg *config.Config, observer gallerycache.Observer, logger *zap.Logger) (*gatewayStores, error) {
	gallery, err := chooseGalleryStore(cfg, observer, logger)
	if err != nil {
		return nil, err
	}
	origin := boardstore.Open(ctx, cfg.BoardStore.DSN, cfg.BoardStore.Dir, logger)
	boards, err := boardstore.NewCached(origin, cfg.Limits.BoardCache)
	if err != nil {
		return nil, fmt.Errorf("board store cache: %w", err)
	}
	return &gatewayStores{gallery: gallery, boards: boards}, nil
}

func chooseGalleryStore(cfg *config.Config, observer gallerycache.Observer, logger *zap.Logger) (galleryrepo.Store, error) {
	var origin galleryrepo.Store
	if cfg.Gallery.CanUseS3() {
		s3Cfg := galleryrepo.S3Config{
			Endpoint:  cfg.Gallery.Endpoint,
			Region:    cfg.Gallery.Region,
			AccessKey: cfg.Gallery.AccessKey,
			SecretKey: cfg.Gallery.SecretKey,
			Bucket:    cfg.Gallery.Bucket,
			UseSSL:    cfg.Gallery.UseSSL,
		}
		s3Store, err := galleryrepo.NewS3Store(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gallery s3 store: %w", err)
		}
		logger.Info("gallery store: s3", zap.String("bucket", s3Cfg.Bucket), zap.String("endpoint", s3Cfg.Endpoint))
		origin = s3Store
	} else {
		if cfg.Gallery.Enabled {
			logger.Warn("gallery store: using in-memory fallback (s3 config incomplete)")
		}
		origin = galleryrepo.NewMemoryStore()
	}
	return gallerycache.NewCachedStore(origin, gallerycache.DefaultCacheConfig(), observer), nil
}

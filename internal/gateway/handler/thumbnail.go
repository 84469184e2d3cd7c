package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"adcanvas/internal/cache/memory"
	gatewaystudio "adcanvas/internal/gateway/service/studio"
	"adcanvas/internal/render"
)

// CacheObserver receives cache hit/miss notifications.
type CacheObserver interface {
	CacheLookup(cache string, hit bool)
}

type ThumbnailHandler struct {
	svc      *gatewaystudio.Service
	cache    *memory.LRUTTL[string, []byte]
	observer CacheObserver
	logger   *zap.Logger
}

func NewThumbnailHandler(svc *gatewaystudio.Service, observer CacheObserver, logger *zap.Logger) *ThumbnailHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThumbnailHandler{
		svc:      svc,
		cache:    memory.NewLRUTTL[string, []byte](256, 64<<20, 10*time.Minute),
		observer: observer,
		logger:   logger,
	}
}

// HandleThumbnail serves GET /boards/{id}/thumbnail.png?w=&h=&images=0.
func (h *ThumbnailHandler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	b, err := h.svc.Board(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	opts, err := thumbnailOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The version and update time change with every store mutation.
	key := fmt.Sprintf("%s|%d|%d|%dx%d|%t", b.ID, b.Store.Version(), b.UpdatedAt().UnixNano(), opts.Width, opts.Height, opts.SkipImages)
	png, hit := h.cache.Get(key)
	if h.observer != nil {
		h.observer.CacheLookup("thumbnail", hit)
	}
	if !hit {
		png, err = render.Thumbnail(b.Store.Document(), opts)
		if err != nil {
			h.logger.Error("render thumbnail", zap.String("board_id", b.ID), zap.Error(err))
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		h.cache.Set(key, png, len(png))
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-cache")
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(png)
}

func thumbnailOptions(r *http.Request) (render.Options, error) {
	q := r.URL.Query()
	var opts render.Options
	for name, dst := range map[string]*int{"w": &opts.Width, "h": &opts.Height} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > render.MaxSide {
			return render.Options{}, fmt.Errorf("%s must be between 1 and %d", name, render.MaxSide)
		}
		*dst = v
	}
	opts.SkipImages = q.Get("images") == "0"
	if opts.Width == 0 {
		opts.Width = render.DefaultWidth
	}
	if opts.Height == 0 {
		opts.Height = render.DefaultHeight
	}
	return opts, nil
}

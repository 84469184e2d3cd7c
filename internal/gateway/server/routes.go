package server

import (
	"net/http"

	"connectrpc.com/connect"

	"adcanvas/internal/gateway/handler"
	"adcanvas/internal/gateway/handler/rpc"
	"adcanvas/internal/gateway/handler/ws"
	"adcanvas/internal/gateway/middleware"
)

// Instrumenter wraps a route with request metrics.
type Instrumenter interface {
	Middleware(route string, next http.Handler) http.Handler
}

type Handlers struct {
	Studio    *rpc.StudioHandler
	Stream    *ws.BoardStreamHandler
	Thumbnail *handler.ThumbnailHandler
	Gallery   *handler.GalleryHandler
	Metrics   http.Handler

	RPCOptions  []connect.HandlerOption
	CORSOrigins []string
	Instrument  Instrumenter
}

func NewMux(h Handlers) http.Handler {
	mux := http.NewServeMux()
	route := func(pattern, name string, next http.Handler) {
		if h.Instrument != nil {
			next = h.Instrument.Middleware(name, next)
		}
		mux.Handle(pattern, next)
	}

	// RPC Handlers
	path, studio := rpc.NewStudioServiceHandler(h.Studio, h.RPCOptions...)
	route(path, "rpc", studio)

	// Streams and assets
	if h.Stream != nil {
		mux.HandleFunc("GET /ws/boards", h.Stream.HandleBoardStream)
	}
	if h.Thumbnail != nil {
		route("/boards/{id}/thumbnail.png", "thumbnail", http.HandlerFunc(h.Thumbnail.HandleThumbnail))
	}
	if h.Gallery != nil {
		route("/gallery/{id}", "gallery", http.HandlerFunc(h.Gallery.HandleImage))
	}
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}
	mux.HandleFunc("/healthz", handler.HandleHealth)

	return middleware.CORS(h.CORSOrigins)(mux)
}

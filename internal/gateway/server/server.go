package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server serves the studio over HTTP/1.1 and cleartext HTTP/2. Websocket
// upgrades stay on HTTP/1.1, so there is no write timeout.
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

func New(addr string, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           h2c.NewHandler(handler, &http2.Server{IdleTimeout: 2 * time.Minute}),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
			ErrorLog:          zap.NewStdLog(logger.Named("http")),
		},
		logger: logger,
	}
}

func (s *Server) Addr() string { return s.http.Addr }

// Start listens on the configured address and blocks until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("studio server listening", zap.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping studio server")
	return s.http.Shutdown(ctx)
}

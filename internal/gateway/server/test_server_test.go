package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adcanvas/internal/board"
	"adcanvas/internal/catalog"
	"adcanvas/internal/gateway/handler"
	"adcanvas/internal/gateway/handler/rpc"
	"adcanvas/internal/gateway/repository/boardstore"
	galleryrepo "adcanvas/internal/gateway/repository/gallery"
	"adcanvas/internal/gateway/service/publish"
	gatewaystudio "adcanvas/internal/gateway/service/studio"
	"adcanvas/internal/llm"
)

type routeRecorder struct{ routes []string }

func (r *routeRecorder) Middleware(route string, next http.Handler) http.Handler {
	r.routes = append(r.routes, route)
	return next
}

func TestServer_ServesMuxAndShutsDown(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	reg := board.NewRegistry(board.Deps{Provider: llm.Unconfigured("test"), Catalog: cat})
	t.Cleanup(reg.Close)
	pub := publish.New(galleryrepo.NewMemoryStore(), cat, nil)
	svc := gatewaystudio.New(reg, boardstore.NewFileStore(t.TempDir()), pub, cat, nil)

	rec := &routeRecorder{}
	mux := NewMux(Handlers{
		Studio:     rpc.NewStudioHandler(svc),
		Gallery:    handler.NewGalleryHandler(pub),
		RPCOptions: rpc.HandlerOptions(nil, 0),
		Instrument: rec,
	})
	require.Equal(t, []string{"rpc", "gallery"}, rec.routes)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := New(ln.Addr().String(), mux, nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	base := "http://" + ln.Addr().String()
	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"ok":true`)

	resp, err = http.Post(base+rpc.StudioCreateBoardProcedure, "application/json", strings.NewReader(`{"name":"over the wire"}`))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "over the wire")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-done)
}

package handler

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adcanvas/internal/board"
	"adcanvas/internal/catalog"
	"adcanvas/internal/gateway/repository/boardstore"
	galleryrepo "adcanvas/internal/gateway/repository/gallery"
	"adcanvas/internal/gateway/service/publish"
	gatewaystudio "adcanvas/internal/gateway/service/studio"
	"adcanvas/internal/llm"
	"adcanvas/internal/media"
)

type lookups struct{ hits, misses int }

func (l *lookups) CacheLookup(_ string, hit bool) {
	if hit {
		l.hits++
		return
	}
	l.misses++
}

type fixture struct {
	svc *gatewaystudio.Service
	pub *publish.Service
	mux *http.ServeMux
	obs *lookups
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	reg := board.NewRegistry(board.Deps{Provider: llm.Configured(llm.NewFakeClient()), Catalog: cat, Timeout: 5 * time.Second})
	t.Cleanup(reg.Close)
	pub := publish.New(galleryrepo.NewMemoryStore(), cat, nil)
	svc := gatewaystudio.New(reg, boardstore.NewFileStore(t.TempDir()), pub, cat, nil)

	f := &fixture{svc: svc, pub: pub, mux: http.NewServeMux(), obs: &lookups{}}
	f.mux.HandleFunc("/boards/{id}/thumbnail.png", NewThumbnailHandler(svc, f.obs, nil).HandleThumbnail)
	f.mux.HandleFunc("/gallery/{id}", NewGalleryHandler(pub).HandleImage)
	f.mux.HandleFunc("/healthz", HandleHealth)
	return f
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (f *fixture) boardWithImage(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()
	created, err := f.svc.CreateBoard(ctx, &gatewaystudio.CreateBoardRequest{Name: "thumbs"})
	require.NoError(t, err)
	node, err := f.svc.ImportImage(ctx, &gatewaystudio.ImportImageRequest{
		BoardID: created.Board.ID,
		DataURI: media.Encode("image/png", llm.FakePNG()),
	})
	require.NoError(t, err)
	return created.Board.ID, node.Node.ID
}

func TestThumbnail_RendersAndCaches(t *testing.T) {
	f := newFixture(t)
	id, _ := f.boardWithImage(t)

	rec := f.get("/boards/" + id + "/thumbnail.png?w=200&h=100")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 200, img.Bounds().Dx())
	require.Equal(t, 100, img.Bounds().Dy())

	again := f.get("/boards/" + id + "/thumbnail.png?w=200&h=100")
	require.Equal(t, rec.Body.Bytes(), again.Body.Bytes())
	require.Equal(t, 1, f.obs.misses)
	require.Equal(t, 1, f.obs.hits)

	_, err = f.svc.ImportImage(context.Background(), &gatewaystudio.ImportImageRequest{
		BoardID: id,
		DataURI: media.Encode("image/png", llm.FakePNG()),
		X:       400,
	})
	require.NoError(t, err)
	f.get("/boards/" + id + "/thumbnail.png?w=200&h=100")
	require.Equal(t, 2, f.obs.misses)
}

func TestThumbnail_Errors(t *testing.T) {
	f := newFixture(t)
	id, _ := f.boardWithImage(t)

	require.Equal(t, http.StatusNotFound, f.get("/boards/missing/thumbnail.png").Code)
	require.Equal(t, http.StatusBadRequest, f.get("/boards/"+id+"/thumbnail.png?w=abc").Code)
	require.Equal(t, http.StatusBadRequest, f.get("/boards/"+id+"/thumbnail.png?h=0").Code)

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/boards/"+id+"/thumbnail.png", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGallery_StreamsPublishedImage(t *testing.T) {
	f := newFixture(t)
	id, nodeID := f.boardWithImage(t)
	b, err := f.svc.Board(context.Background(), id)
	require.NoError(t, err)

	res, err := f.pub.Publish(context.Background(), b, publish.Request{NodeID: nodeID, Title: "hero"})
	require.NoError(t, err)

	rec := f.get("/gallery/" + res.Item.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.Equal(t, llm.FakePNG(), rec.Body.Bytes())

	require.Equal(t, http.StatusNotFound, f.get("/gallery/nope").Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

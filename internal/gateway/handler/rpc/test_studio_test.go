package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"adcanvas/internal/board"
	"adcanvas/internal/catalog"
	"adcanvas/internal/gateway/repository/boardstore"
	galleryrepo "adcanvas/internal/gateway/repository/gallery"
	"adcanvas/internal/gateway/service/publish"
	gatewaystudio "adcanvas/internal/gateway/service/studio"
	"adcanvas/internal/llm"
	"adcanvas/internal/media"
	"adcanvas/internal/studio"
)

func newServer(t *testing.T) string {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	reg := board.NewRegistry(board.Deps{Provider: llm.Configured(llm.NewFakeClient()), Catalog: cat, Timeout: 5 * time.Second})
	t.Cleanup(reg.Close)
	svc := gatewaystudio.New(reg, boardstore.NewFileStore(t.TempDir()), publish.New(galleryrepo.NewMemoryStore(), cat, nil), cat, nil)

	path, h := NewStudioServiceHandler(NewStudioHandler(svc), HandlerOptions(nil, 1<<20)...)
	mux := http.NewServeMux()
	mux.Handle(path, h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func client[Req, Res any](base, procedure string) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](http.DefaultClient, base+procedure, connect.WithCodec(jsonCodec{}))
}

func TestStudioService_BoardLifecycle(t *testing.T) {
	ctx := context.Background()
	base := newServer(t)

	create := client[gatewaystudio.CreateBoardRequest, gatewaystudio.BoardResponse](base, StudioCreateBoardProcedure)
	created, err := create.CallUnary(ctx, connect.NewRequest(&gatewaystudio.CreateBoardRequest{Name: "Launch"}))
	require.NoError(t, err)
	id := created.Msg.Board.ID
	require.NotEmpty(t, id)
	require.Equal(t, "Launch", created.Msg.Board.Name)

	setProduct := client[gatewaystudio.SetProductRequest, gatewaystudio.SetProductResponse](base, StudioSetProductProcedure)
	_, err = setProduct.CallUnary(ctx, connect.NewRequest(&gatewaystudio.SetProductRequest{
		BoardID: id,
		Product: studio.ProductProfile{Image: media.Encode("image/png", llm.FakePNG())},
	}))
	require.NoError(t, err)

	generate := client[gatewaystudio.GenerateRequest, gatewaystudio.TasksResponse](base, StudioGenerateProcedure)
	params := studio.DefaultParams()
	params.Count = 1
	res, err := generate.CallUnary(ctx, connect.NewRequest(&gatewaystudio.GenerateRequest{BoardID: id, Params: &params}))
	require.NoError(t, err)
	require.Len(t, res.Msg.Tasks, 1)
	require.True(t, res.Msg.Generation.Configured)

	get := client[gatewaystudio.GetBoardRequest, gatewaystudio.BoardResponse](base, StudioGetBoardProcedure)
	require.Eventually(t, func() bool {
		got, err := get.CallUnary(ctx, connect.NewRequest(&gatewaystudio.GetBoardRequest{BoardID: id}))
		if err != nil || len(got.Msg.Board.Document.Nodes) != 1 {
			return false
		}
		return got.Msg.Board.Document.Nodes[0].HasImage()
	}, 5*time.Second, 20*time.Millisecond)

	zoom := client[gatewaystudio.ZoomRequest, gatewaystudio.ViewResponse](base, StudioZoomProcedure)
	view, err := zoom.CallUnary(ctx, connect.NewRequest(&gatewaystudio.ZoomRequest{BoardID: id, Action: board.ZoomOut}))
	require.NoError(t, err)
	require.InDelta(t, 0.7, view.Msg.View.Viewport.Scale, 1e-9)

	templates := client[gatewaystudio.ListTemplatesRequest, gatewaystudio.ListTemplatesResponse](base, StudioListTemplatesProcedure)
	list, err := templates.CallUnary(ctx, connect.NewRequest(&gatewaystudio.ListTemplatesRequest{}))
	require.NoError(t, err)
	require.NotEmpty(t, list.Msg.Templates)
	require.NotEmpty(t, list.Msg.Options.Styles)
}

func TestStudioService_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	base := newServer(t)

	get := client[gatewaystudio.GetBoardRequest, gatewaystudio.BoardResponse](base, StudioGetBoardProcedure)
	_, err := get.CallUnary(ctx, connect.NewRequest(&gatewaystudio.GetBoardRequest{BoardID: "missing"}))
	require.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	create := client[gatewaystudio.CreateBoardRequest, gatewaystudio.BoardResponse](base, StudioCreateBoardProcedure)
	created, err := create.CallUnary(ctx, connect.NewRequest(&gatewaystudio.CreateBoardRequest{}))
	require.NoError(t, err)

	generate := client[gatewaystudio.GenerateRequest, gatewaystudio.TasksResponse](base, StudioGenerateProcedure)
	_, err = generate.CallUnary(ctx, connect.NewRequest(&gatewaystudio.GenerateRequest{BoardID: created.Msg.Board.ID}))
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	combine := client[gatewaystudio.CombineRequest, gatewaystudio.TasksResponse](base, StudioCombineProcedure)
	_, err = combine.CallUnary(ctx, connect.NewRequest(&gatewaystudio.CombineRequest{BoardID: created.Msg.Board.ID}))
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestToStudioError(t *testing.T) {
	cases := []struct {
		err  error
		want connect.Code
	}{
		{fmt.Errorf("wrap: %w", studio.ErrNeedTwoSelected), connect.CodeInvalidArgument},
		{gatewaystudio.ErrInvalidArgument, connect.CodeInvalidArgument},
		{board.ErrBoardNotFound, connect.CodeNotFound},
		{boardstore.ErrNotFound, connect.CodeNotFound},
		{studio.ErrNodeBusy, connect.CodeFailedPrecondition},
		{publish.ErrNotPublishable, connect.CodeFailedPrecondition},
		{fmt.Errorf("gemini: %w", llm.ErrCircuitOpen), connect.CodeUnavailable},
		{context.Canceled, connect.CodeCanceled},
		{context.DeadlineExceeded, connect.CodeDeadlineExceeded},
		{errors.New("disk on fire"), connect.CodeInternal},
	}
	for _, tc := range cases {
		got := toStudioError(tc.err)
		require.Equal(t, tc.want, connect.CodeOf(got), tc.err.Error())
		require.ErrorIs(t, got, tc.err)
	}
}

func TestJSONCodec_EmptyBody(t *testing.T) {
	var req gatewaystudio.ListBoardsRequest
	require.NoError(t, jsonCodec{}.Unmarshal(nil, &req))
	require.Error(t, jsonCodec{}.Unmarshal([]byte("{"), &req))
}

package studio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adcanvas/internal/board"
	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/canvas/interact"
	"adcanvas/internal/catalog"
	"adcanvas/internal/gateway/repository/boardstore"
	galleryrepo "adcanvas/internal/gateway/repository/gallery"
	"adcanvas/internal/gateway/service/publish"
	"adcanvas/internal/llm"
	"adcanvas/internal/media"
	core "adcanvas/internal/studio"
)

func newService(t *testing.T, provider llm.Provider) *Service {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	reg := board.NewRegistry(board.Deps{Provider: provider, Catalog: cat, Timeout: 5 * time.Second})
	t.Cleanup(reg.Close)
	pub := publish.New(galleryrepo.NewMemoryStore(), cat, nil)
	return New(reg, boardstore.NewFileStore(t.TempDir()), pub, cat, nil)
}

func productURI() string { return media.Encode("image/png", llm.FakePNG()) }

func TestService_GenerateFlow(t *testing.T) {
	ctx := context.Background()
	s := newService(t, llm.Configured(llm.NewFakeClient()))

	created, err := s.CreateBoard(ctx, &CreateBoardRequest{Name: "Mugs"})
	require.NoError(t, err)
	id := created.Board.ID
	require.True(t, created.Board.Generation.Configured)

	_, err = s.SetProduct(ctx, &SetProductRequest{BoardID: id, Product: core.ProductProfile{Image: productURI(), Description: "travel mug"}})
	require.NoError(t, err)

	params := created.Board.Params
	params.Count = 2
	res, err := s.Generate(ctx, &GenerateRequest{BoardID: id, Params: &params})
	require.NoError(t, err)
	require.Len(t, res.Tasks, 2)

	b, err := s.Board(ctx, id)
	require.NoError(t, err)
	b.Studio.Wait()

	got, err := s.GetBoard(ctx, &GetBoardRequest{BoardID: id})
	require.NoError(t, err)
	require.Len(t, got.Board.Document.Nodes, 2)
	for _, n := range got.Board.Document.Nodes {
		require.Equal(t, graph.StateReady, n.State())
		require.True(t, n.HasImage())
	}

	captioned, err := s.Caption(ctx, &CaptionRequest{BoardID: id, NodeID: res.Tasks[0].NodeID})
	require.NoError(t, err)
	require.Len(t, captioned.Tasks, 1)
	b.Studio.Wait()
	require.Equal(t, 3, b.Store.Len())

	pub, err := s.Publish(ctx, &PublishRequest{BoardID: id, Request: publish.Request{NodeID: res.Tasks[1].NodeID}})
	require.NoError(t, err)
	require.NotEmpty(t, pub.Item.ID)

	gallery, err := s.ListGallery(ctx, &ListGalleryRequest{})
	require.NoError(t, err)
	require.Len(t, gallery.Items, 1)
}

func TestService_Unconfigured(t *testing.T) {
	ctx := context.Background()
	s := newService(t, llm.Unconfigured("no key"))
	created, err := s.CreateBoard(ctx, &CreateBoardRequest{})
	require.NoError(t, err)
	require.Equal(t, "Untitled board", created.Board.Name)
	require.False(t, created.Board.Generation.Configured)
	require.Equal(t, "no key", created.Board.Generation.Reason)

	res, err := s.Generate(ctx, &GenerateRequest{BoardID: created.Board.ID})
	require.NoError(t, err)
	require.Empty(t, res.Tasks)
	require.False(t, res.Generation.Configured)

	res, err = s.Remix(ctx, &RemixRequest{BoardID: created.Board.ID, NodeID: "missing"})
	require.NoError(t, err)
	require.Empty(t, res.Tasks)
}

func TestService_ImportAndInteract(t *testing.T) {
	ctx := context.Background()
	s := newService(t, llm.Unconfigured(""))
	created, _ := s.CreateBoard(ctx, &CreateBoardRequest{})
	id := created.Board.ID

	node, err := s.ImportImage(ctx, &ImportImageRequest{BoardID: id, Name: "mug.png", DataURI: productURI(), X: 10, Y: 20})
	require.NoError(t, err)
	require.Equal(t, graph.KindImported, node.Node.Kind)

	_, err = s.ImportImage(ctx, &ImportImageRequest{BoardID: id, DataURI: "data:text/plain;base64,aGk="})
	require.Error(t, err)

	v, err := s.Pointer(ctx, &PointerRequest{BoardID: id, Phase: PointerDown, Event: interact.PointerEvent{
		Pos:    geom.Point{X: 500, Y: 500},
		Target: &interact.Target{Kind: interact.TargetBackground},
	}})
	require.NoError(t, err)
	require.Equal(t, interact.StatePanning, v.View.State)
	v, err = s.Pointer(ctx, &PointerRequest{BoardID: id, Phase: PointerUp})
	require.NoError(t, err)
	require.Equal(t, interact.StateIdle, v.View.State)

	_, err = s.Pointer(ctx, &PointerRequest{BoardID: id, Phase: "hover"})
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = s.Zoom(ctx, &ZoomRequest{BoardID: id, Action: "sideways"})
	require.True(t, errors.Is(err, ErrInvalidArgument))

	z, err := s.Zoom(ctx, &ZoomRequest{BoardID: id, Action: board.ZoomReset})
	require.NoError(t, err)
	require.Equal(t, interact.DefaultConfig().DefaultScale, z.View.Viewport.Scale)

	k, err := s.Key(ctx, &KeyRequest{BoardID: id, Event: interact.KeyEvent{Key: "a", Ctrl: true}})
	require.NoError(t, err)
	require.True(t, k.Result.Handled)
	require.Equal(t, []string{node.Node.ID}, k.View.Selection)

	_, err = s.GetBoard(ctx, &GetBoardRequest{BoardID: " "})
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = s.GetBoard(ctx, &GetBoardRequest{BoardID: "nope"})
	require.True(t, errors.Is(err, board.ErrBoardNotFound))
}

func TestService_CombineRejectsUnknownNodes(t *testing.T) {
	ctx := context.Background()
	s := newService(t, llm.Configured(llm.NewFakeClient()))
	created, err := s.CreateBoard(ctx, &CreateBoardRequest{})
	require.NoError(t, err)
	id := created.Board.ID

	_, err = s.Combine(ctx, &CombineRequest{BoardID: id, NodeIDs: []string{"ghost-a", "ghost-b"}})
	require.ErrorIs(t, err, graph.ErrNodeNotFound)

	b, err := s.Board(ctx, id)
	require.NoError(t, err)
	require.Empty(t, b.Selection.IDs())
	require.Empty(t, b.Store.Nodes())
}

func TestService_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := newService(t, llm.Unconfigured(""))
	created, _ := s.CreateBoard(ctx, &CreateBoardRequest{Name: "Spring"})
	id := created.Board.ID
	_, err := s.ImportImage(ctx, &ImportImageRequest{BoardID: id, DataURI: productURI()})
	require.NoError(t, err)

	saved, err := s.SaveBoard(ctx, &SaveBoardRequest{BoardID: id})
	require.NoError(t, err)
	require.Equal(t, 1, saved.Summary.Nodes)

	list, err := s.ListBoards(ctx, &ListBoardsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Saved, 1)
	require.Len(t, list.Live, 1)

	// Closing the live board leaves the saved copy, which GetBoard reopens.
	require.NoError(t, s.boards.Remove(id))
	got, err := s.GetBoard(ctx, &GetBoardRequest{BoardID: id})
	require.NoError(t, err)
	require.Equal(t, "Spring", got.Board.Name)
	require.Len(t, got.Board.Document.Nodes, 1)

	loaded, err := s.LoadBoard(ctx, &LoadBoardRequest{BoardID: id})
	require.NoError(t, err)
	require.Equal(t, id, loaded.Board.ID)

	_, err = s.DeleteBoard(ctx, &DeleteBoardRequest{BoardID: id})
	require.NoError(t, err)
	_, err = s.DeleteBoard(ctx, &DeleteBoardRequest{BoardID: id})
	require.Error(t, err)
	_, err = s.LoadBoard(ctx, &LoadBoardRequest{BoardID: id})
	require.True(t, errors.Is(err, boardstore.ErrNotFound))
}

func TestService_ListTemplates(t *testing.T) {
	s := newService(t, llm.Unconfigured(""))
	res, err := s.ListTemplates(context.Background(), &ListTemplatesRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, res.Templates)
	require.NotEmpty(t, res.Options.Styles)
	require.NotEmpty(t, res.Options.CloneModes)

	res, err = s.ListTemplates(context.Background(), &ListTemplatesRequest{Query: "zzz-no-match"})
	require.NoError(t, err)
	require.NotNil(t, res.Templates)
	require.Empty(t, res.Templates)
}

package boardstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adcanvas/internal/board"
	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/graph"
)

func snapshot(id string, updated time.Time, nodes ...string) board.Snapshot {
	doc := graph.Document{Version: 3}
	for _, n := range nodes {
		doc.Nodes = append(doc.Nodes, graph.Node{ID: n, Kind: graph.KindConcept, Title: "T " + n})
	}
	return board.Snapshot{
		ID:        id,
		Name:      "Board " + id,
		Document:  doc,
		Viewport:  geom.Viewport{Scale: 1.2, Offset: geom.Point{X: 5, Y: -5}},
		CreatedAt: updated.Add(-time.Hour),
		UpdatedAt: updated,
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	want := snapshot("b1", now, "a", "b")
	require.NoError(t, s.Save(ctx, want))
	got, err := s.Load(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.NoError(t, s.Save(ctx, snapshot("b2", now.Add(time.Minute), "x")))
	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "b2", list[0].ID)
	require.Equal(t, 2, list[1].Nodes)

	require.NoError(t, s.Delete(ctx, "b1"))
	_, err = s.Load(ctx, "b1")
	require.True(t, errors.Is(err, ErrNotFound))
	require.True(t, errors.Is(s.Delete(ctx, "b1"), ErrNotFound))
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	s := NewFileStore(t.TempDir())
	for _, id := range []string{"", "../x", "a/b"} {
		require.Error(t, s.Save(context.Background(), board.Snapshot{ID: id}), "id %q", id)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	s := NewFileStore(t.TempDir() + "/none")
	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

type countingStore struct {
	Store
	loads, lists int
}

func (c *countingStore) Load(ctx context.Context, id string) (board.Snapshot, error) {
	c.loads++
	return c.Store.Load(ctx, id)
}

func (c *countingStore) List(ctx context.Context) ([]board.Summary, error) {
	c.lists++
	return c.Store.List(ctx)
}

func TestCached_ReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	origin := &countingStore{Store: NewFileStore(t.TempDir())}
	c, err := NewCached(origin, 4)
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, origin.Save(ctx, snapshot("b1", now, "a")))
	for i := 0; i < 2; i++ {
		_, err := c.Load(ctx, "b1")
		require.NoError(t, err)
		_, err = c.List(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, 1, origin.loads)
	require.Equal(t, 1, origin.lists)

	require.NoError(t, c.Save(ctx, snapshot("b2", now, "x")))
	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, 2, origin.lists)

	require.NoError(t, c.Delete(ctx, "b1"))
	_, err = c.Load(ctx, "b1")
	require.True(t, errors.Is(err, ErrNotFound))
}

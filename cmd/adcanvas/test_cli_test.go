package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"adcanvas/internal/board"
	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/llm"
	"adcanvas/internal/media"
)

func TestWriteResults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	nodes := []graph.Node{
		{ID: "ready-node-1", Kind: graph.KindImage, Content: media.Encode("image/png", llm.FakePNG()), Meta: graph.Meta{Headline: "Hot coffee"}},
		{ID: "f", Kind: graph.KindConcept, Title: "Broken", Meta: graph.Meta{Failure: "quota"}},
	}
	rows, failed, err := writeResults(nodes, dir)
	require.NoError(t, err)
	require.Equal(t, 1, failed)
	require.Len(t, rows, 2)
	require.Equal(t, "ready-no", rows[0][0])
	require.Equal(t, "Hot coffee", rows[0][2])
	require.Equal(t, "Broken", rows[1][2])

	data, err := os.ReadFile(filepath.Join(dir, "ready-node-1.png"))
	require.NoError(t, err)
	require.Equal(t, llm.FakePNG(), data)
}

func TestExtension(t *testing.T) {
	require.Equal(t, ".jpg", extension("image/jpeg"))
	require.Equal(t, ".webp", extension("image/webp"))
	require.Equal(t, ".png", extension("image/whatever"))
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	snap := board.Snapshot{
		ID:   "b1",
		Name: "demo",
		Document: graph.Document{
			Version: 1,
			Nodes:   []graph.Node{{ID: "n1", Kind: graph.KindConcept, X: 10, Y: 10, Title: "Hello"}},
		},
	}
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	in := filepath.Join(dir, "b1.json")
	require.NoError(t, os.WriteFile(in, raw, 0o644))
	out := filepath.Join(dir, "thumb.png")

	cmd := renderCmd()
	cmd.SetArgs([]string{in, "--out", out, "--width", "120", "--height", "80"})
	require.NoError(t, cmd.Execute())

	png, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "\x89PNG", string(png[:4]))
}

package studio

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/catalog"
	"adcanvas/internal/llm"
	"adcanvas/internal/media"
	"adcanvas/internal/tester"
)

type fixture struct {
	o   *Orchestrator
	st  *graph.Store
	sel *graph.Selection
}

func newFixture(t *testing.T, cli llm.Client, opts ...Option) fixture {
	t.Helper()
	cat, err := catalog.Default()
	tester.NoErr(t, err)
	st := graph.NewStore()
	sel := graph.NewSelection()
	t.Cleanup(sel.Track(st))
	p := llm.Unconfigured("test")
	if cli != nil {
		p = llm.Configured(cli)
	}
	o := New(st, sel, p, cat, opts...)
	t.Cleanup(o.Close)
	return fixture{o: o, st: st, sel: sel}
}

func productURI() string { return media.Encode("image/png", llm.FakePNG()) }

func withProduct(t *testing.T, f fixture) fixture {
	t.Helper()
	tester.NoErr(t, f.o.SetProduct(ProductProfile{Image: productURI(), Description: "travel mug"}))
	return f
}

func waitTasks(t *testing.T, tasks ...*Task) []error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errs := make([]error, len(tasks))
	for i, task := range tasks {
		errs[i] = task.Wait(ctx)
		if ctx.Err() != nil {
			t.Fatalf("task %s did not settle", task.ID)
		}
	}
	return errs
}

func mustNode(t *testing.T, st *graph.Store, id string) graph.Node {
	t.Helper()
	n, ok := st.Node(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	return n
}

// readyNode adds a settled concept node with an image.
func readyNode(t *testing.T, st *graph.Store, id string, x, y float64) graph.Node {
	t.Helper()
	n := graph.Node{
		ID: id, Kind: graph.KindConcept, X: x, Y: y, Width: graph.DefaultWidth,
		Title:   "Title " + id,
		Content: productURI(),
		Meta: graph.Meta{
			Headline: "Title " + id, Body: "Body " + id,
			ImagePrompt: "prompt " + id, Angle: "Aspiration", Theory: "AIDA",
		},
	}
	tester.NoErr(t, st.AddNodes(n))
	return n
}

func lastText(parts []llm.Part) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// gated blocks JSON calls until the gate opens, then answers like the
// default fake.
func gated(gate <-chan struct{}) *llm.FakeClient {
	inner := llm.NewFakeClient()
	f := llm.NewFakeClient()
	f.JSONFunc = func(ctx context.Context, req llm.JSONRequest) (json.RawMessage, error) {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return inner.GenerateJSON(ctx, req)
	}
	return f
}

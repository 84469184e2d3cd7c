package interact

import (
	"testing"

	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/tester"
)

func TestZoomStaysInBounds(t *testing.T) {
	c, _, _ := newFixture(t)
	for i := 0; i < 1000; i++ {
		c.ZoomIn()
	}
	tester.Eq(t, c.Viewport().Scale, 4.0)
	for i := 0; i < 1000; i++ {
		c.ZoomOut()
	}
	tester.Eq(t, c.Viewport().Scale, 0.1)

	tester.True(t, c.Wheel(-1e9, true))
	tester.Eq(t, c.Viewport().Scale, 4.0)
	tester.True(t, c.Wheel(1e9, true))
	tester.Eq(t, c.Viewport().Scale, 0.1)
}

func TestWheelNeedsModifier(t *testing.T) {
	c, _, _ := newFixture(t)
	tester.False(t, c.Wheel(-200, false))
	tester.Eq(t, c.Viewport().Scale, 0.8)
	tester.True(t, c.Wheel(-200, true))
	tester.Near(t, c.Viewport().Scale, 1.0, 1e-9)
}

func TestResetView(t *testing.T) {
	c, _, _ := newFixture(t)
	c.SetViewport(geom.Viewport{Scale: 3, Offset: geom.Point{X: 400, Y: -90}})
	tester.Eq(t, c.ResetView(), geom.Viewport{Scale: 0.8})
	tester.Eq(t, c.SetViewport(geom.Viewport{Scale: 50}).Scale, 4.0)
}

func TestFitViewFramesNodes(t *testing.T) {
	c, _, _ := newFixture(t)
	vp := c.FitView(1280, 800)
	tester.True(t, vp.Scale >= 0.1 && vp.Scale <= 4)
	for _, p := range []geom.Point{{X: 100, Y: 100}, {X: 920, Y: 1000}} {
		s := vp.ToScreen(p)
		tester.True(t, s.X >= 0 && s.X <= 1280 && s.Y >= 0 && s.Y <= 800, "%v off screen at %v", p, s)
	}
}

func TestKeyboardShortcuts(t *testing.T) {
	c, st, sel := newFixture(t)
	tester.NoErr(t, st.AddWire(graph.Wire{ID: "w1", From: "a", To: "b"}))
	tester.NoErr(t, st.AddWire(graph.Wire{ID: "w2", From: "b", To: "cap"}))

	res := c.KeyDown(KeyEvent{Key: "a", Meta: true})
	tester.True(t, res.Handled)
	tester.Eq(t, sel.IDs(), []string{"a", "b", "cap"})

	tester.True(t, c.KeyDown(KeyEvent{Key: "Escape"}).Handled)
	tester.Eq(t, sel.Len(), 0)
	c.KeyDown(KeyEvent{Key: "Escape"})
	tester.Eq(t, sel.Len(), 0)

	sel.Set([]string{"b"})
	res = c.KeyDown(KeyEvent{Key: "Backspace"})
	tester.Eq(t, res.Removed, []string{"b"})
	tester.Eq(t, st.IDs(), []string{"a", "cap"})
	tester.Len(t, st.Wires(), 0)
	tester.Eq(t, sel.Len(), 0)
}

func TestKeyboardIgnoredInTextInput(t *testing.T) {
	c, st, sel := newFixture(t)
	sel.Set([]string{"a"})
	tester.False(t, c.KeyDown(KeyEvent{Key: "Delete", InTextInput: true}).Handled)
	tester.False(t, c.KeyDown(KeyEvent{Key: "a", Ctrl: true, InTextInput: true}).Handled)
	tester.Eq(t, st.Len(), 3)
	tester.Eq(t, sel.IDs(), []string{"a"})
	tester.False(t, c.KeyDown(KeyEvent{Key: "a"}).Handled, "plain a is not a shortcut")
}

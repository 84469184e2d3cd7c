package geom

import (
	"math"
	"testing"

	"adcanvas/internal/tester"
)

func TestViewportRoundTrip(t *testing.T) {
	vps := []Viewport{
		{Scale: 0.8},
		{Scale: 0.1, Offset: Point{X: -420, Y: 33}},
		{Scale: 4, Offset: Point{X: 12.5, Y: -900}},
	}
	pts := []Point{{}, {X: 100, Y: 100}, {X: -3.25, Y: 7777}}
	for _, vp := range vps {
		for _, p := range pts {
			got := vp.ToCanvas(vp.ToScreen(p))
			tester.Near(t, got.X, p.X, 1e-9, "x for %v at %v", p, vp)
			tester.Near(t, got.Y, p.Y, 1e-9, "y for %v at %v", p, vp)
		}
	}
}

func TestToScreenAppliesScaleThenOffset(t *testing.T) {
	vp := Viewport{Scale: 2, Offset: Point{X: 10, Y: -5}}
	tester.Eq(t, vp.ToScreen(Point{X: 3, Y: 4}), Point{X: 16, Y: 3})
}

func TestCanvasDeltaDividesByScale(t *testing.T) {
	for _, s := range []float64{0.1, 0.5, 0.8, 1, 2.5, 4} {
		d := Viewport{Scale: s}.CanvasDelta(Point{X: 40, Y: -12})
		tester.Near(t, d.X, 40/s, 1e-9)
		tester.Near(t, d.Y, -12/s, 1e-9)
	}
}

func TestClamp(t *testing.T) {
	tester.Eq(t, Clamp(5, 0.1, 4), 4.0)
	tester.Eq(t, Clamp(-1, 0.1, 4), 0.1)
	tester.Eq(t, Clamp(1.5, 0.1, 4), 1.5)
	tester.Eq(t, Clamp(math.NaN(), 0.1, 4), 0.1)
}

func TestNodeCenterUsesWidthForBothAxes(t *testing.T) {
	tester.Eq(t, NodeCenter(100, 50, 320), Point{X: 260, Y: 210})
}

func TestWireCurveControlOffset(t *testing.T) {
	near := WireCurve(Point{X: 0, Y: 0}, Point{X: 0, Y: 100}, DefaultControlCap)
	tester.Near(t, near.ControlOffset(), 50, 1e-9, "near nodes bend by half the distance")

	far := WireCurve(Point{X: 0, Y: 0}, Point{X: 3000, Y: 4000}, DefaultControlCap)
	tester.Near(t, far.ControlOffset(), 200, 1e-9, "far nodes cap at the configured bow")

	def := WireCurve(Point{}, Point{X: 0, Y: 10000}, 0)
	tester.Near(t, def.ControlOffset(), DefaultControlCap, 1e-9, "zero cap falls back to default")
}

func TestBezierEndpointsAndPath(t *testing.T) {
	b := WireCurve(Point{X: 10, Y: 20}, Point{X: 10, Y: 120}, 200)
	tester.Eq(t, b.Point(0), b.Start)
	tester.Eq(t, b.Point(1), b.End)
	tester.Eq(t, b.SVGPath(), "M 10 20 C 10 70, 10 70, 10 120")
}

func TestFitViewportCentersBounds(t *testing.T) {
	bounds := Rect{X: 100, Y: 100, W: 800, H: 400}
	vp := FitViewport(bounds, 1000, 600, 100, 0.1, 4)
	tester.Near(t, vp.Scale, 1, 1e-9)
	center := vp.ToScreen(Point{X: 500, Y: 300})
	tester.Near(t, center.X, 500, 1e-9)
	tester.Near(t, center.Y, 300, 1e-9)

	empty := FitViewport(Rect{}, 1000, 600, 100, 0.1, 4)
	tester.Eq(t, empty.Scale, 1.0)
}

func TestRectUnionIgnoresEmpty(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	tester.Eq(t, a.Union(Rect{}), a)
	tester.Eq(t, a.Union(Rect{X: 20, Y: -5, W: 5, H: 5}), Rect{X: 0, Y: -5, W: 25, H: 15})
	tester.True(t, a.Contains(Point{X: 10, Y: 10}))
	tester.False(t, a.Contains(Point{X: 10.1, Y: 5}))
}

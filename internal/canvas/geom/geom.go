// Package geom holds the pure coordinate math of the canvas: the pan/zoom
// transform between canvas space and screen space, node anchor points and
// the bezier curves drawn between them.
package geom

import (
	"fmt"
	"math"
	"strconv"
)

// Point is a 2D coordinate. Whether it is in canvas or screen space depends
// on the caller.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point) Scale(f float64) Point { return Point{X: p.X * f, Y: p.Y * f} }
func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }
func Distance(a, b Point) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }
func Lerp(a, b Point, t float64) Point { return a.Add(b.Sub(a).Scale(t)) }
func Midpoint(a, b Point) Point { return Lerp(a, b, 0.5) }

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Viewport is the pan/zoom state of a canvas:
// screen = canvas*Scale + Offset.
type Viewport struct {
	Scale  float64 `json:"scale"`
	Offset Point   `json:"offset"`
}

// ToScreen maps a canvas-space point to screen space.
func (v Viewport) ToScreen(p Point) Point {
	return p.Scale(v.scale()).Add(v.Offset)
}

// ToCanvas maps a screen-space point back to canvas space.
func (v Viewport) ToCanvas(p Point) Point {
	return p.Sub(v.Offset).Scale(1 / v.scale())
}

// CanvasDelta converts a pointer displacement measured in screen pixels into
// the matching displacement in canvas units.
func (v Viewport) CanvasDelta(d Point) Point {
	return d.Scale(1 / v.scale())
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 || math.IsNaN(v.Scale) {
		return 1
	}
	return v.Scale
}

// NodeCenter returns the wire anchor of a node placed at (x, y) with the
// given width. Nodes are laid out square by default so the vertical anchor
// uses the width as well.
func NodeCenter(x, y, width float64) Point {
	return Point{X: x + width/2, Y: y + width*0.5}
}

// DefaultControlCap bounds how far a wire bows away from its endpoints.
const DefaultControlCap = 200.0

// Bezier is a cubic curve from Start to End.
type Bezier struct {
	Start Point `json:"start"`
	C1    Point `json:"c1"`
	C2    Point `json:"c2"`
	End   Point `json:"end"`
}

// WireCurve builds the curve drawn between two node anchors. The control
// points are offset vertically by min(distance/2, maxBow): near nodes get a
// gentle bend, far nodes never bow more than maxBow.
func WireCurve(start, end Point, maxBow float64) Bezier {
	if maxBow <= 0 {
		maxBow = DefaultControlCap
	}
	off := math.Min(Distance(start, end)*0.5, maxBow)
	return Bezier{
		Start: start,
		C1:    Point{X: start.X, Y: start.Y + off},
		C2:    Point{X: end.X, Y: end.Y - off},
		End:   end,
	}
}

// ControlOffset reports the vertical control distance used by the curve.
func (b Bezier) ControlOffset() float64 { return b.C1.Y - b.Start.Y }

// Point evaluates the curve at t in [0, 1].
func (b Bezier) Point(t float64) Point {
	t = Clamp(t, 0, 1)
	u := 1 - t
	return b.Start.Scale(u * u * u).
		Add(b.C1.Scale(3 * u * u * t)).
		Add(b.C2.Scale(3 * u * t * t)).
		Add(b.End.Scale(t * t * t))
}

// SVGPath renders the curve as an SVG path "d" attribute.
func (b Bezier) SVGPath() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return "M " + f(b.Start.X) + " " + f(b.Start.Y) +
		" C " + f(b.C1.X) + " " + f(b.C1.Y) +
		", " + f(b.C2.X) + " " + f(b.C2.Y) +
		", " + f(b.End.X) + " " + f(b.End.Y)
}

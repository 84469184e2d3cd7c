package geom

import "math"

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Min() Point { return Point{X: r.X, Y: r.Y} }
func (r Rect) Max() Point { return Point{X: r.X + r.W, Y: r.Y + r.H} }

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Union returns the smallest rect covering both. An empty operand is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// FitViewport returns the viewport that shows bounds centred inside a screen
// of the given size, leaving padding pixels on every side. The scale is
// clamped to [minScale, maxScale].
func FitViewport(bounds Rect, screenW, screenH, padding, minScale, maxScale float64) Viewport {
	if bounds.Empty() || screenW <= 0 || screenH <= 0 {
		return Viewport{Scale: Clamp(1, minScale, maxScale)}
	}
	availW := math.Max(screenW-2*padding, 1)
	availH := math.Max(screenH-2*padding, 1)
	scale := Clamp(math.Min(availW/bounds.W, availH/bounds.H), minScale, maxScale)
	return Viewport{
		Scale: scale,
		Offset: Point{
			X: (screenW-bounds.W*scale)/2 - bounds.X*scale,
			Y: (screenH-bounds.H*scale)/2 - bounds.Y*scale,
		},
	}
}

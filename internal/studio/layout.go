package studio

import (
	"math"

	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/graph"
)

// Placement of generated nodes in canvas units.
const (
	RowY           = 100.0
	RowStartX      = 100.0
	RowGap         = 400.0
	ConceptSpacing = 350.0
	RemixOffset    = 400.0
	CombineDrop    = 400.0
	CaptionRise    = 350.0
)

// NextRowX is where a new row of nodes starts: RowGap to the right of the
// right-most node origin, or RowStartX on an empty canvas.
func NextRowX(nodes []graph.Node) float64 {
	if len(nodes) == 0 {
		return RowStartX
	}
	maxX := math.Inf(-1)
	for _, n := range nodes {
		maxX = math.Max(maxX, n.X)
	}
	return maxX + RowGap
}

// RowSlot is the origin of the i-th node of a batch.
func RowSlot(startX float64, i int) geom.Point {
	return geom.Point{X: startX + float64(i)*ConceptSpacing, Y: RowY}
}

func remixSlot(src graph.Node) geom.Point {
	return geom.Point{X: src.X + RemixOffset, Y: src.Y}
}

// combineSlot sits between the two sources horizontally and below the
// lower one.
func combineSlot(a, b graph.Node) geom.Point {
	return geom.Point{X: (a.X + b.X) / 2, Y: math.Max(a.Y, b.Y) + CombineDrop}
}

func captionSlot(src graph.Node) geom.Point {
	return geom.Point{X: src.X, Y: src.Y - CaptionRise}
}

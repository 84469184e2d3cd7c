// Package render rasterizes board documents into PNG previews.
package render

import (
	"bytes"
	"fmt"

	"github.com/gogpu/gg"

	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/media"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 400
	MaxSide       = 2048

	padding      = 24
	cornerRadius = 12
)

// Palette colours, hex without the leading '#'.
var (
	background   = gg.Hex("f1f5f9")
	cardFill     = "ffffff"
	loadingFill  = "e2e8f0"
	failedFill   = "fee2e2"
	captionFill  = "fef9c3"
	cardBorder   = "cbd5e1"
	wireStroke   = "6366f1"
	failedBorder = "ef4444"
)

// Options control the output size. Zero values pick the defaults.
type Options struct {
	Width  int
	Height int
	// SkipImages draws image nodes as plain cards.
	SkipImages bool
}

func (o Options) size() (int, int, error) {
	w, h := o.Width, o.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	if w < 0 || h < 0 || w > MaxSide || h > MaxSide {
		return 0, 0, fmt.Errorf("thumbnail size %dx%d out of range", w, h)
	}
	return w, h, nil
}

// Thumbnail draws doc fitted into the output size and returns PNG bytes.
// Nodes are drawn in document order so later nodes overlap earlier ones.
func Thumbnail(doc graph.Document, opts Options) ([]byte, error) {
	w, h, err := opts.size()
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.ClearWithColor(background)

	vp := geom.FitViewport(doc.Bounds(), float64(w), float64(h), padding, 0.01, 1)
	for _, wire := range doc.Wires {
		from, okF := doc.Node(wire.From)
		to, okT := doc.Node(wire.To)
		if !okF || !okT {
			continue
		}
		if err := drawWire(dc, vp, from, to); err != nil {
			return nil, err
		}
	}
	for _, n := range doc.Nodes {
		if err := drawNode(dc, vp, n, opts.SkipImages); err != nil {
			return nil, fmt.Errorf("draw node %s: %w", n.ID, err)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func drawWire(dc *gg.Context, vp geom.Viewport, from, to graph.Node) error {
	c := geom.WireCurve(from.Center(), to.Center(), geom.DefaultControlCap)
	s, c1, c2, e := vp.ToScreen(c.Start), vp.ToScreen(c.C1), vp.ToScreen(c.C2), vp.ToScreen(c.End)
	dc.SetHexColor(wireStroke)
	dc.SetLineWidth(max(1, 2*vp.Scale))
	dc.MoveTo(s.X, s.Y)
	dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, e.X, e.Y)
	return dc.Stroke()
}

func drawNode(dc *gg.Context, vp geom.Viewport, n graph.Node, skipImages bool) error {
	nw, nh := n.Size()
	p := vp.ToScreen(n.Position())
	sw, sh := nw*vp.Scale, nh*vp.Scale
	r := cornerRadius * vp.Scale

	fill, border := cardFill, cardBorder
	switch {
	case n.State() == graph.StateFailed:
		fill, border = failedFill, failedBorder
	case n.State() == graph.StateLoading:
		fill = loadingFill
	case n.Kind == graph.KindCaption:
		fill = captionFill
	}
	dc.SetHexColor(fill)
	dc.DrawRoundedRectangle(p.X, p.Y, sw, sh, r)
	if err := dc.Fill(); err != nil {
		return err
	}

	if !skipImages && n.HasImage() {
		if img, err := decode(n.Content); err == nil {
			dc.DrawImageEx(img, gg.DrawImageOptions{
				X:         p.X,
				Y:         p.Y,
				DstWidth:  sw,
				DstHeight: sh,
			})
		}
	}

	dc.SetHexColor(border)
	dc.SetLineWidth(max(1, vp.Scale))
	dc.DrawRoundedRectangle(p.X, p.Y, sw, sh, r)
	return dc.Stroke()
}

func decode(uri string) (*gg.ImageBuf, error) {
	_, data, err := media.Decode(uri)
	if err != nil {
		return nil, err
	}
	img, err := media.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return gg.ImageBufFromImage(img), nil
}

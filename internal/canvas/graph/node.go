package graph

import (
	"strings"

	"adcanvas/internal/canvas/geom"
)

// Kind classifies what a node displays.
type Kind string

const (
	KindConcept  Kind = "concept"
	KindImage    Kind = "image"
	KindCaption  Kind = "caption"
	KindImported Kind = "imported"
)

func (k Kind) Valid() bool {
	switch k {
	case KindConcept, KindImage, KindCaption, KindImported:
		return true
	}
	return false
}

const (
	DefaultWidth         = 320.0
	DefaultCaptionHeight = 200.0
)

// State is the lifecycle state derived from a node's metadata.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateFailed  State = "failed"
)

// Meta carries the generation details of a node. Headline and Body keep the
// concept copy after Content has been replaced by the image. Failure holds the error
// text of the last generation attempt; a non-empty Failure means the node is
// in the failed state.
type Meta struct {
	Headline    string `json:"headline,omitempty"`
	Body        string `json:"body,omitempty"`
	Angle       string `json:"angle,omitempty"`
	Theory      string `json:"theory,omitempty"`
	ImagePrompt string `json:"image_prompt,omitempty"`
	Format      string `json:"format,omitempty"`
	Loading     bool   `json:"loading,omitempty"`
	Failure     string `json:"failure,omitempty"`
}

// Node is one card on the canvas. Content is either a data URI (image kinds)
// or plain text (captions and concepts without an image yet).
type Node struct {
	ID      string  `json:"id"`
	Kind    Kind    `json:"kind"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Meta    Meta    `json:"meta"`
}

func (n Node) State() State {
	switch {
	case n.Meta.Failure != "":
		return StateFailed
	case n.Meta.Loading:
		return StateLoading
	default:
		return StateReady
	}
}

// Interactive reports whether content actions (remix, caption, publish,
// combine) may target the node. Loading and failed nodes can still be
// dragged and resized.
func (n Node) Interactive() bool { return n.State() == StateReady }

func (n Node) Position() geom.Point { return geom.Point{X: n.X, Y: n.Y} }

// Size resolves the defaults: width falls back to DefaultWidth, height to
// DefaultCaptionHeight for captions and to the width otherwise.
func (n Node) Size() (w, h float64) {
	w = n.Width
	if w <= 0 {
		w = DefaultWidth
	}
	h = n.Height
	if h <= 0 {
		if n.Kind == KindCaption {
			h = DefaultCaptionHeight
		} else {
			h = w
		}
	}
	return w, h
}

func (n Node) Bounds() geom.Rect {
	w, h := n.Size()
	return geom.Rect{X: n.X, Y: n.Y, W: w, H: h}
}

// Center is the wire anchor of the node.
func (n Node) Center() geom.Point {
	w, _ := n.Size()
	return geom.NodeCenter(n.X, n.Y, w)
}

// HasImage reports whether the content is inline image data.
func (n Node) HasImage() bool { return strings.HasPrefix(n.Content, "data:image/") }

// Relation records why a wire exists.
type Relation string

const (
	RelationCombine Relation = "combine"
	RelationRemix   Relation = "remix"
	RelationCaption Relation = "caption"
)

// Wire is a directed provenance edge: To was derived from From.
type Wire struct {
	ID       string   `json:"id"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Relation Relation `json:"relation,omitempty"`
}

// Touches reports whether id is either endpoint.
func (w Wire) Touches(id string) bool { return w.From == id || w.To == id }

// Curve returns the bezier drawn for w between the two node anchors.
func (w Wire) Curve(from, to Node) geom.Bezier {
	return geom.WireCurve(from.Center(), to.Center(), geom.DefaultControlCap)
}

// Patch is a partial node update. Nil fields are left unchanged.
type Patch struct {
	X       *float64
	Y       *float64
	Width   *float64
	Height  *float64
	Title   *string
	Content *string
	Meta    *MetaPatch
}

// MetaPatch is a partial metadata update.
type MetaPatch struct {
	Headline    *string
	Body        *string
	Angle       *string
	Theory      *string
	ImagePrompt *string
	Format      *string
	Loading     *bool
	Failure     *string
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }

func (p Patch) apply(n *Node) {
	if p.X != nil {
		n.X = *p.X
	}
	if p.Y != nil {
		n.Y = *p.Y
	}
	if p.Width != nil {
		n.Width = *p.Width
	}
	if p.Height != nil {
		n.Height = *p.Height
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if m := p.Meta; m != nil {
		if m.Headline != nil {
			n.Meta.Headline = *m.Headline
		}
		if m.Body != nil {
			n.Meta.Body = *m.Body
		}
		if m.Angle != nil {
			n.Meta.Angle = *m.Angle
		}
		if m.Theory != nil {
			n.Meta.Theory = *m.Theory
		}
		if m.ImagePrompt != nil {
			n.Meta.ImagePrompt = *m.ImagePrompt
		}
		if m.Format != nil {
			n.Meta.Format = *m.Format
		}
		if m.Loading != nil {
			n.Meta.Loading = *m.Loading
		}
		if m.Failure != nil {
			n.Meta.Failure = *m.Failure
		}
	}
}

// Ready is the patch that settles a node successfully with content.
func Ready(content string) Patch {
	return Patch{Content: &content, Meta: &MetaPatch{Loading: Ptr(false), Failure: Ptr("")}}
}

// Failed is the patch that settles a node with an error.
func Failed(err error) Patch {
	msg := "generation failed"
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		msg = err.Error()
	}
	return Patch{Meta: &MetaPatch{Loading: Ptr(false), Failure: &msg}}
}

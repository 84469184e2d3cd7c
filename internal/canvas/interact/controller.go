// Package interact turns raw pointer, wheel and keyboard input into canvas
// updates: panning the viewport, dragging and resizing nodes, zooming and
// the selection shortcuts.
package interact

import (
	"math"
	"sync"

	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/graph"
)

// State is the single active interaction. Only one is ever active, which
// serializes every pointer-driven geometry mutation.
type State string

const (
	StateIdle         State = "idle"
	StatePanning      State = "panning"
	StateDraggingNode State = "dragging_node"
	StateResizingNode State = "resizing_node"
)

// TargetKind classifies what lies under the pointer.
type TargetKind string

const (
	TargetBackground   TargetKind = "background"
	TargetNode         TargetKind = "node"
	TargetNoDrag       TargetKind = "no_drag"
	TargetResizeHandle TargetKind = "resize_handle"
)

type Target struct {
	Kind   TargetKind `json:"kind"`
	NodeID string     `json:"node_id,omitempty"`
}

// PointerEvent is a pointer-down. Target may be nil, in which case the
// controller hit-tests Pos against the node geometry.
type PointerEvent struct {
	Pos    geom.Point `json:"pos"`
	Shift  bool       `json:"shift,omitempty"`
	Target *Target    `json:"target,omitempty"`
}

// Graph is the subset of the node store the controller mutates.
type Graph interface {
	Node(id string) (graph.Node, bool)
	Nodes() []graph.Node
	IDs() []string
	Patch(id string, p graph.Patch) (graph.Node, error)
	RemoveNodes(ids ...string) ([]string, []graph.Wire)
}

// Surface owns the global move/up listeners. Attach is called when an
// interaction starts and Detach when it ends, so nothing listens while idle.
type Surface interface {
	Attach()
	Detach()
}

type Config struct {
	MinScale         float64
	MaxScale         float64
	DefaultScale     float64
	WheelSensitivity float64
	ZoomStep         float64
	MinNodeWidth     float64
	MinNodeHeight    float64
	// HandleSize is the side of the square resize handle at the bottom-right
	// corner of a selected node, in canvas units.
	HandleSize float64
}

func DefaultConfig() Config {
	return Config{
		MinScale:         0.1,
		MaxScale:         4,
		DefaultScale:     0.8,
		WheelSensitivity: 0.001,
		ZoomStep:         0.1,
		MinNodeWidth:     280,
		MinNodeHeight:    160,
		HandleSize:       24,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinScale <= 0 {
		c.MinScale = d.MinScale
	}
	if c.MaxScale <= 0 || c.MaxScale < c.MinScale {
		c.MaxScale = math.Max(d.MaxScale, c.MinScale)
	}
	if c.DefaultScale <= 0 {
		c.DefaultScale = d.DefaultScale
	}
	c.DefaultScale = geom.Clamp(c.DefaultScale, c.MinScale, c.MaxScale)
	if c.WheelSensitivity <= 0 {
		c.WheelSensitivity = d.WheelSensitivity
	}
	if c.ZoomStep <= 0 {
		c.ZoomStep = d.ZoomStep
	}
	if c.MinNodeWidth <= 0 {
		c.MinNodeWidth = d.MinNodeWidth
	}
	if c.MinNodeHeight <= 0 {
		c.MinNodeHeight = d.MinNodeHeight
	}
	if c.HandleSize <= 0 {
		c.HandleSize = d.HandleSize
	}
	return c
}

type Option func(*Controller)

func WithSurface(s Surface) Option { return func(c *Controller) { c.surface = s } }

func WithViewport(vp geom.Viewport) Option { return func(c *Controller) { c.vp = vp } }

// Controller is the interaction state machine of one canvas.
type Controller struct {
	mu      sync.Mutex
	cfg     Config
	graph   Graph
	sel     *graph.Selection
	surface Surface

	vp    geom.Viewport
	state State

	// captured at pointer-down
	down         geom.Point
	originOffset geom.Point
	nodeID       string
	nodeOrigin   geom.Point
	originW      float64
	originH      float64
}

func New(g Graph, sel *graph.Selection, cfg Config, opts ...Option) *Controller {
	cfg = cfg.withDefaults()
	c := &Controller{
		cfg:   cfg,
		graph: g,
		sel:   sel,
		vp:    geom.Viewport{Scale: cfg.DefaultScale},
		state: StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.vp.Scale = geom.Clamp(c.vp.Scale, cfg.MinScale, cfg.MaxScale)
	return c
}

func (c *Controller) Config() Config { return c.cfg }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Viewport() geom.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vp
}

// SetViewport replaces the viewport, clamping the scale.
func (c *Controller) SetViewport(vp geom.Viewport) geom.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	vp.Scale = geom.Clamp(vp.Scale, c.cfg.MinScale, c.cfg.MaxScale)
	c.vp = vp
	return c.vp
}

// PointerDown starts an interaction depending on what was hit and returns
// the resulting state.
func (c *Controller) PointerDown(ev PointerEvent) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		// A second button while an interaction runs changes nothing.
		return c.state
	}

	var target Target
	if ev.Target != nil {
		target = *ev.Target
	} else {
		target = c.hitTestLocked(ev.Pos)
	}

	switch target.Kind {
	case TargetNoDrag:
		return c.state
	case TargetResizeHandle:
		n, ok := c.graph.Node(target.NodeID)
		if !ok {
			return c.state
		}
		if !c.sel.Contains(n.ID) {
			// Handles are only shown on selected nodes; treat as body.
			return c.beginDragLocked(ev, n)
		}
		c.down = ev.Pos
		c.nodeID = n.ID
		c.originW, c.originH = n.Width, n.Height
		if c.originW <= 0 {
			c.originW = graph.DefaultWidth
		}
		c.enterLocked(StateResizingNode)
	case TargetNode:
		n, ok := c.graph.Node(target.NodeID)
		if !ok {
			return c.beginPanLocked(ev)
		}
		return c.beginDragLocked(ev, n)
	default:
		return c.beginPanLocked(ev)
	}
	return c.state
}

func (c *Controller) beginPanLocked(ev PointerEvent) State {
	c.sel.Clear()
	c.down = ev.Pos
	c.originOffset = c.vp.Offset
	c.enterLocked(StatePanning)
	return c.state
}

func (c *Controller) beginDragLocked(ev PointerEvent, n graph.Node) State {
	if ev.Shift {
		c.sel.Toggle(n.ID)
	} else {
		c.sel.Replace(n.ID)
	}
	c.down = ev.Pos
	c.nodeID = n.ID
	c.nodeOrigin = n.Position()
	c.enterLocked(StateDraggingNode)
	return c.state
}

// PointerMove updates the active interaction. Pointer displacement is in
// screen pixels; node displacement is divided by the scale so that a node
// follows the pointer 1:1 at every zoom level. Panning moves the offset,
// which already lives in screen space.
func (c *Controller) PointerMove(pos geom.Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	delta := pos.Sub(c.down)
	switch c.state {
	case StatePanning:
		c.vp.Offset = c.originOffset.Add(delta)
		return true
	case StateDraggingNode:
		d := c.vp.CanvasDelta(delta)
		p := c.nodeOrigin.Add(d)
		if _, err := c.graph.Patch(c.nodeID, graph.Patch{X: &p.X, Y: &p.Y}); err != nil {
			// Node vanished mid-drag.
			c.leaveLocked()
			return false
		}
		return true
	case StateResizingNode:
		d := c.vp.CanvasDelta(delta)
		w := math.Max(c.cfg.MinNodeWidth, c.originW+d.X)
		patch := graph.Patch{Width: &w}
		if c.originH > 0 {
			h := math.Max(c.cfg.MinNodeHeight, c.originH+d.Y)
			patch.Height = &h
		}
		if _, err := c.graph.Patch(c.nodeID, patch); err != nil {
			c.leaveLocked()
			return false
		}
		return true
	}
	return false
}

// PointerUp ends any interaction.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaveLocked()
}

// PointerLeave ends any interaction when the pointer leaves the surface.
func (c *Controller) PointerLeave() { c.PointerUp() }

func (c *Controller) enterLocked(s State) {
	if c.state == StateIdle && s != StateIdle && c.surface != nil {
		c.surface.Attach()
	}
	c.state = s
}

func (c *Controller) leaveLocked() {
	if c.state != StateIdle && c.surface != nil {
		c.surface.Detach()
	}
	c.state = StateIdle
	c.nodeID = ""
}

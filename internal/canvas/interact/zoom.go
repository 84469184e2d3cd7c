package interact

import (
	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/graph"
)

// Wheel zooms by -deltaY*sensitivity when a zoom modifier (ctrl/meta) is
// held. Without a modifier the wheel is left to the client and false is
// returned.
func (c *Controller) Wheel(deltaY float64, modifier bool) bool {
	if !modifier {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vp.Scale = geom.Clamp(c.vp.Scale-deltaY*c.cfg.WheelSensitivity, c.cfg.MinScale, c.cfg.MaxScale)
	return true
}

func (c *Controller) ZoomIn() geom.Viewport { return c.zoomBy(c.cfg.ZoomStep) }
func (c *Controller) ZoomOut() geom.Viewport { return c.zoomBy(-c.cfg.ZoomStep) }

func (c *Controller) zoomBy(step float64) geom.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vp.Scale = geom.Clamp(c.vp.Scale+step, c.cfg.MinScale, c.cfg.MaxScale)
	return c.vp
}

// ResetView restores the default scale and a zero offset.
func (c *Controller) ResetView() geom.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vp = geom.Viewport{Scale: c.cfg.DefaultScale}
	return c.vp
}

// FitView frames every node inside a screen of the given size.
func (c *Controller) FitView(screenW, screenH float64) geom.Viewport {
	var bounds geom.Rect
	for _, n := range c.graph.Nodes() {
		bounds = bounds.Union(n.Bounds())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if bounds.Empty() {
		c.vp = geom.Viewport{Scale: c.cfg.DefaultScale}
		return c.vp
	}
	c.vp = geom.FitViewport(bounds, screenW, screenH, 48, c.cfg.MinScale, c.cfg.MaxScale)
	return c.vp
}

// HitTest classifies a screen point. The topmost (last inserted) node wins.
// It cannot detect no-drag regions; clients report those explicitly.
func (c *Controller) HitTest(screen geom.Point) Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hitTestLocked(screen)
}

func (c *Controller) hitTestLocked(screen geom.Point) Target {
	p := c.vp.ToCanvas(screen)
	nodes := c.graph.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		b := n.Bounds()
		if !b.Contains(p) {
			continue
		}
		if c.sel.Contains(n.ID) && onHandle(b, p, c.cfg.HandleSize) {
			return Target{Kind: TargetResizeHandle, NodeID: n.ID}
		}
		return Target{Kind: TargetNode, NodeID: n.ID}
	}
	return Target{Kind: TargetBackground}
}

func onHandle(b geom.Rect, p geom.Point, size float64) bool {
	handle := geom.Rect{X: b.X + b.W - size, Y: b.Y + b.H - size, W: size, H: size}
	return handle.Contains(p)
}

// KeyEvent is a key-down. InTextInput is set when focus is inside an
// input or textarea.
type KeyEvent struct {
	Key         string `json:"key"`
	Ctrl        bool   `json:"ctrl,omitempty"`
	Meta        bool   `json:"meta,omitempty"`
	InTextInput bool   `json:"in_text_input,omitempty"`
}

// KeyResult reports what a key did. Handled means the client should
// suppress the native behaviour.
type KeyResult struct {
	Handled bool     `json:"handled"`
	Removed []string `json:"removed,omitempty"`
}

// KeyDown handles the canvas shortcuts: Delete/Backspace remove the
// selection and its wires, Escape clears it, Ctrl/Meta+A selects every
// node. Nothing is hijacked while a text input has focus.
func (c *Controller) KeyDown(ev KeyEvent) KeyResult {
	if ev.InTextInput {
		return KeyResult{}
	}
	switch {
	case ev.Key == "Delete" || ev.Key == "Backspace":
		return KeyResult{Handled: true, Removed: c.DeleteSelected()}
	case ev.Key == "Escape":
		c.sel.Clear()
		return KeyResult{Handled: true}
	case (ev.Ctrl || ev.Meta) && (ev.Key == "a" || ev.Key == "A"):
		c.sel.Set(c.graph.IDs())
		return KeyResult{Handled: true}
	}
	return KeyResult{}
}

// DeleteSelected removes every selected node and any wire touching them,
// then clears the selection.
func (c *Controller) DeleteSelected() []string {
	ids := c.sel.IDs()
	if len(ids) == 0 {
		return nil
	}
	c.mu.Lock()
	if c.state != StateIdle {
		for _, id := range ids {
			if id == c.nodeID {
				c.leaveLocked()
				break
			}
		}
	}
	c.mu.Unlock()
	removed, _ := c.graph.RemoveNodes(ids...)
	c.sel.Clear()
	return removed
}

var _ Graph = (*graph.Store)(nil)

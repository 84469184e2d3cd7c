// Package board ties one canvas session together: the node store, the
// selection, the interaction controller, the generation orchestrator and
// an event broker that streams every change to connected clients.
package board

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/canvas/interact"
	"adcanvas/internal/catalog"
	"adcanvas/internal/llm"
	"adcanvas/internal/studio"
)

// Deps are shared by every board of a registry.
type Deps struct {
	Provider  llm.Provider
	Catalog   *catalog.Catalog
	Logger    *zap.Logger
	Metrics   studio.Metrics
	Timeout   time.Duration
	MaxUpload int64
	Interact  interact.Config
}

type Board struct {
	ID string

	Store      *graph.Store
	Selection  *graph.Selection
	Controller *interact.Controller
	Studio     *studio.Orchestrator
	Events     *Broker

	created time.Time
	stops   []func()

	mu      sync.RWMutex
	name    string
	updated time.Time
}

func New(id, name string, deps Deps) *Board {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now().UTC()
	b := &Board{
		ID:        id,
		Store:     graph.NewStore(),
		Selection: graph.NewSelection(),
		Events:    NewBroker(),
		created:   now,
		name:      name,
		updated:   now,
	}
	b.Controller = interact.New(b.Store, b.Selection, deps.Interact, interact.WithSurface(surface{b}))
	b.Studio = studio.New(b.Store, b.Selection, deps.Provider, deps.Catalog,
		studio.WithLogger(logger.With(zap.String("board_id", id))),
		studio.WithMetrics(deps.Metrics),
		studio.WithTimeout(deps.Timeout),
		studio.WithMaxUpload(deps.MaxUpload),
	)
	b.stops = append(b.stops,
		b.Selection.Track(b.Store),
		b.Store.Observe(func(ev graph.Event) {
			b.touch()
			b.Events.Publish(Event{Board: b.ID, Type: EventGraph, Graph: &ev})
		}),
	)
	return b
}

// surface forwards capture and release to clients.
type surface struct{ b *Board }

func (s surface) Attach() { s.b.Events.Publish(Event{Board: s.b.ID, Type: EventCapture}) }
func (s surface) Detach() { s.b.Events.Publish(Event{Board: s.b.ID, Type: EventRelease}) }

func (b *Board) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

func (b *Board) Rename(name string) {
	b.mu.Lock()
	b.name = name
	b.mu.Unlock()
}

func (b *Board) CreatedAt() time.Time { return b.created }

func (b *Board) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updated
}

func (b *Board) touch() {
	b.mu.Lock()
	b.updated = time.Now().UTC()
	b.mu.Unlock()
}

func (b *Board) View() View {
	return View{
		Viewport:  b.Controller.Viewport(),
		Selection: b.Selection.IDs(),
		State:     b.Controller.State(),
	}
}

func (b *Board) publishView() View {
	v := b.View()
	b.Events.Publish(Event{Board: b.ID, Type: EventView, View: &v})
	return v
}

// PointerDown starts an interaction and publishes the resulting view.
func (b *Board) PointerDown(ev interact.PointerEvent) View {
	b.Controller.PointerDown(ev)
	return b.publishView()
}

// PointerMove updates the active interaction. Node geometry reaches
// clients as graph events; a pan publishes the new viewport.
func (b *Board) PointerMove(pos geom.Point) View {
	if b.Controller.PointerMove(pos) && b.Controller.State() == interact.StatePanning {
		return b.publishView()
	}
	return b.View()
}

func (b *Board) PointerUp() View {
	b.Controller.PointerUp()
	return b.publishView()
}

func (b *Board) PointerLeave() View {
	b.Controller.PointerLeave()
	return b.publishView()
}

func (b *Board) Wheel(deltaY float64, modifier bool) View {
	if b.Controller.Wheel(deltaY, modifier) {
		return b.publishView()
	}
	return b.View()
}

// ZoomAction is a toolbar zoom command.
type ZoomAction string

const (
	ZoomIn    ZoomAction = "in"
	ZoomOut   ZoomAction = "out"
	ZoomReset ZoomAction = "reset"
	ZoomFit   ZoomAction = "fit"
)

// Zoom applies a toolbar action; screenW and screenH are only used by fit.
func (b *Board) Zoom(action ZoomAction, screenW, screenH float64) (View, bool) {
	switch action {
	case ZoomIn:
		b.Controller.ZoomIn()
	case ZoomOut:
		b.Controller.ZoomOut()
	case ZoomReset:
		b.Controller.ResetView()
	case ZoomFit:
		b.Controller.FitView(screenW, screenH)
	default:
		return b.View(), false
	}
	return b.publishView(), true
}

func (b *Board) Key(ev interact.KeyEvent) (interact.KeyResult, View) {
	res := b.Controller.KeyDown(ev)
	if res.Handled {
		return res, b.publishView()
	}
	return res, b.View()
}

// Close cancels in-flight generation and disconnects subscribers.
func (b *Board) Close() {
	b.Studio.Close()
	for _, stop := range b.stops {
		stop()
	}
	b.Events.Close()
}

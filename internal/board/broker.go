package board

import (
	"context"
	"sync"

	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/canvas/interact"
)

// EventType names what a board event carries.
type EventType string

const (
	// EventGraph wraps a node/wire store mutation.
	EventGraph EventType = "graph"
	// EventView reports a viewport, selection or interaction change.
	EventView EventType = "view"
	// EventCapture asks the client to attach global move/up listeners;
	// EventRelease asks it to detach them.
	EventCapture EventType = "capture"
	EventRelease EventType = "release"
)

// View is the non-graph canvas state a client mirrors.
type View struct {
	Viewport  geom.Viewport  `json:"viewport"`
	Selection []string       `json:"selection"`
	State     interact.State `json:"state"`
}

type Event struct {
	Board string       `json:"board"`
	Seq   int64        `json:"seq"`
	Type  EventType    `json:"type"`
	Graph *graph.Event `json:"graph,omitempty"`
	View  *View        `json:"view,omitempty"`
}

// Broker fans board events out to subscribers. Slow subscribers lose
// their oldest pending events rather than blocking the publisher.
type Broker struct {
	mu     sync.Mutex
	seq    int64
	next   int
	subs   map[int]chan Event
	closed bool
}

func NewBroker() *Broker { return &Broker{subs: make(map[int]chan Event)} }

// Subscribe returns a channel that receives every event published after
// the call. The channel is closed when ctx ends or the broker closes.
func (b *Broker) Subscribe(ctx context.Context, buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}()
	return ch
}

// Publish stamps ev with the next sequence number and delivers it.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.seq++
	ev.Seq = b.seq
	for _, ch := range b.subs {
		push(ch, ev)
	}
}

// Seq is the sequence number of the last published event. Subscribers
// that see a larger gap than one between consecutive events lost some.
func (b *Broker) Seq() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

func push(ch chan Event, ev Event) {
	select {
	case ch <- ev:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
}

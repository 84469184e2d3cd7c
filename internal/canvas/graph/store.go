// Package graph is the node/wire model of a canvas: an insertion-ordered set
// of nodes, the provenance wires between them and the selection set.
package graph

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"adcanvas/internal/canvas/geom"
)

var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrDuplicateNode = errors.New("node already exists")
	ErrDanglingWire  = errors.New("wire endpoint does not exist")
)

// Document is an ordered snapshot of the store.
type Document struct {
	Version int64  `json:"version"`
	Nodes   []Node `json:"nodes"`
	Wires   []Wire `json:"wires"`
}

// Bounds covers every node of the document.
func (d Document) Bounds() geom.Rect {
	var r geom.Rect
	for _, n := range d.Nodes {
		r = r.Union(n.Bounds())
	}
	return r
}

// Node looks a node up by id.
func (d Document) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Store holds the nodes and wires of one canvas. It is thread-safe; every
// method is atomic and concurrent patches to the same node are last-write-wins.
type Store struct {
	mu        sync.RWMutex
	version   int64
	order     []string
	nodes     map[string]*Node
	wires     []Wire
	observers map[int]Observer
	nextObs   int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nodes:     make(map[string]*Node),
		observers: make(map[int]Observer),
	}
}

// AddNodes appends nodes in order. The call is all-or-nothing: if any node
// is invalid or already present nothing is added.
func (s *Store) AddNodes(nodes ...Node) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(nodes))
	for i := range nodes {
		id := strings.TrimSpace(nodes[i].ID)
		if id == "" {
			return fmt.Errorf("node.id is required")
		}
		if !nodes[i].Kind.Valid() {
			return fmt.Errorf("node %s: unknown kind %q", id, nodes[i].Kind)
		}
		if _, ok := s.nodes[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
		}
		seen[id] = struct{}{}
		nodes[i].ID = id
	}
	if len(nodes) == 0 {
		return nil
	}
	s.version++
	for _, n := range nodes {
		cp := n
		s.nodes[n.ID] = &cp
		s.order = append(s.order, n.ID)
		s.emit(Event{Type: EventNodeAdded, Version: s.version, Node: &cp})
	}
	return nil
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (Node, bool) {
	if s == nil {
		return Node{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[strings.TrimSpace(id)]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Has reports whether a node with the given id exists.
func (s *Store) Has(id string) bool {
	_, ok := s.Node(id)
	return ok
}

// Nodes returns copies of every node in insertion order.
func (s *Store) Nodes() []Node {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.nodes[id])
	}
	return out
}

// IDs returns every node id in insertion order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Patch applies a partial update and returns the updated node.
func (s *Store) Patch(id string, p Patch) (Node, error) {
	if s == nil {
		return Node{}, fmt.Errorf("store is nil")
	}
	id = strings.TrimSpace(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	p.apply(n)
	s.version++
	cp := *n
	s.emit(Event{Type: EventNodePatched, Version: s.version, Node: &cp})
	return cp, nil
}

// RemoveNodes deletes every listed node together with every wire touching
// one of them. Unknown ids are ignored. It returns the ids actually removed
// and the wires pruned with them.
func (s *Store) RemoveNodes(ids ...string) ([]string, []Wire) {
	if s == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := s.nodes[id]; ok {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return nil, nil
	}

	removed := make([]string, 0, len(drop))
	order := s.order[:0]
	for _, id := range s.order {
		if _, ok := drop[id]; ok {
			removed = append(removed, id)
			delete(s.nodes, id)
			continue
		}
		order = append(order, id)
	}
	s.order = order

	var pruned []Wire
	wires := s.wires[:0]
	for _, w := range s.wires {
		_, from := drop[w.From]
		_, to := drop[w.To]
		if from || to {
			pruned = append(pruned, w)
			continue
		}
		wires = append(wires, w)
	}
	s.wires = wires

	s.version++
	s.emit(Event{Type: EventNodesRemoved, Version: s.version, NodeIDs: removed, Wires: pruned})
	return removed, pruned
}

// AddWire appends a wire. Both endpoints must exist.
func (s *Store) AddWire(w Wire) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	w.ID = strings.TrimSpace(w.ID)
	if w.ID == "" {
		return fmt.Errorf("wire.id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[w.From]; !ok {
		return fmt.Errorf("%w: from %s", ErrDanglingWire, w.From)
	}
	if _, ok := s.nodes[w.To]; !ok {
		return fmt.Errorf("%w: to %s", ErrDanglingWire, w.To)
	}
	for _, existing := range s.wires {
		if existing.ID == w.ID {
			return fmt.Errorf("wire %s already exists", w.ID)
		}
	}
	s.wires = append(s.wires, w)
	s.version++
	cp := w
	s.emit(Event{Type: EventWireAdded, Version: s.version, Wire: &cp})
	return nil
}

// RemoveWiresFor drops every wire with id as either endpoint.
func (s *Store) RemoveWiresFor(id string) []Wire {
	if s == nil {
		return nil
	}
	id = strings.TrimSpace(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	var pruned []Wire
	wires := s.wires[:0]
	for _, w := range s.wires {
		if w.Touches(id) {
			pruned = append(pruned, w)
			continue
		}
		wires = append(wires, w)
	}
	s.wires = wires
	if len(pruned) > 0 {
		s.version++
		s.emit(Event{Type: EventWiresRemoved, Version: s.version, Wires: pruned})
	}
	return pruned
}

// Wires returns every wire in insertion order.
func (s *Store) Wires() []Wire {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Wire(nil), s.wires...)
}

// Version increments on every mutation.
func (s *Store) Version() int64 {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Document returns an ordered snapshot.
func (s *Store) Document() Document {
	if s == nil {
		return Document{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentLocked()
}

func (s *Store) documentLocked() Document {
	nodes := make([]Node, 0, len(s.order))
	for _, id := range s.order {
		nodes = append(nodes, *s.nodes[id])
	}
	return Document{
		Version: s.version,
		Nodes:   nodes,
		Wires:   append([]Wire(nil), s.wires...),
	}
}

// Restore replaces the whole content with doc. Wires whose endpoints are
// missing from doc are dropped.
func (s *Store) Restore(doc Document) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	nodes := make(map[string]*Node, len(doc.Nodes))
	order := make([]string, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		n.ID = strings.TrimSpace(n.ID)
		if n.ID == "" {
			return fmt.Errorf("node.id is required")
		}
		if !n.Kind.Valid() {
			return fmt.Errorf("node %s: unknown kind %q", n.ID, n.Kind)
		}
		if _, ok := nodes[n.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		cp := n
		nodes[n.ID] = &cp
		order = append(order, n.ID)
	}
	wires := make([]Wire, 0, len(doc.Wires))
	for _, w := range doc.Wires {
		if nodes[w.From] == nil || nodes[w.To] == nil {
			continue
		}
		wires = append(wires, w)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nodes
	s.order = order
	s.wires = wires
	if doc.Version > s.version {
		s.version = doc.Version
	}
	s.version++
	snap := s.documentLocked()
	s.emit(Event{Type: EventRestored, Version: s.version, Document: &snap})
	return nil
}

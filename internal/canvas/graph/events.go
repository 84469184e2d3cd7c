package graph

// EventType names a store mutation.
type EventType string

const (
	EventNodeAdded    EventType = "node_added"
	EventNodePatched  EventType = "node_patched"
	EventNodesRemoved EventType = "nodes_removed"
	EventWireAdded    EventType = "wire_added"
	EventWiresRemoved EventType = "wires_removed"
	EventRestored     EventType = "restored"
)

// Event describes one mutation. Only the fields relevant to Type are set.
type Event struct {
	Type     EventType `json:"type"`
	Version  int64     `json:"version"`
	Node     *Node     `json:"node,omitempty"`
	Wire     *Wire     `json:"wire,omitempty"`
	NodeIDs  []string  `json:"node_ids,omitempty"`
	Wires    []Wire    `json:"wires,omitempty"`
	Document *Document `json:"document,omitempty"`
}

// Observer receives store events. Observers run while the store lock is
// held, in version order, and must not call back into the store.
type Observer func(Event)

// Observe registers fn and returns a function that unregisters it.
func (s *Store) Observe(fn Observer) (cancel func()) {
	if s == nil || fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) emit(ev Event) {
	for _, fn := range s.observers {
		fn(ev)
	}
}

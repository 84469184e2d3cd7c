package graph

import (
	"fmt"
	"strings"
	"sync"
)

// Selection is the set of selected node ids. Membership is kept in
// insertion order so that "the first two selected" is well defined.
// Callers only select ids present in the store; Prune drops ids that
// disappeared.
type Selection struct {
	mu    sync.RWMutex
	order []string
}

func NewSelection() *Selection { return &Selection{} }

// Replace makes id the only selected node.
func (s *Selection) Replace(id string) {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.order = nil
		return
	}
	s.order = []string{id}
}

// Toggle adds id when absent and removes it when present.
func (s *Selection) Toggle(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.order {
		if cur == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			return
		}
	}
	s.order = append(s.order, id)
}

// Set replaces the selection with ids, dropping duplicates.
func (s *Selection) Set(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0:0]
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

// SetExisting is Set restricted to ids for which has reports true. The
// selection is left unchanged when any id is unknown.
func (s *Selection) SetExisting(ids []string, has func(id string) bool) error {
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && !has(id) {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
	}
	s.Set(ids)
	return nil
}

// Clear empties the selection. Clearing an empty selection is a no-op.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.order = nil
	s.mu.Unlock()
}

func (s *Selection) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cur := range s.order {
		if cur == id {
			return true
		}
	}
	return false
}

// IDs returns the selected ids in the order they were selected.
func (s *Selection) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Prune keeps only the ids for which keep returns true.
func (s *Selection) Prune(keep func(id string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.order[:0:0]
	for _, id := range s.order {
		if keep(id) {
			out = append(out, id)
		}
	}
	s.order = out
}

// Track keeps the selection consistent with st by pruning ids whenever
// nodes are removed or the store is restored.
func (s *Selection) Track(st *Store) (cancel func()) {
	return st.Observe(func(ev Event) {
		switch ev.Type {
		case EventNodesRemoved:
			gone := make(map[string]struct{}, len(ev.NodeIDs))
			for _, id := range ev.NodeIDs {
				gone[id] = struct{}{}
			}
			s.Prune(func(id string) bool {
				_, drop := gone[id]
				return !drop
			})
		case EventRestored:
			s.Clear()
		}
	})
}

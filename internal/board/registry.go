package board

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrBoardNotFound = errors.New("board not found")

// Registry owns the live boards of a process.
type Registry struct {
	deps Deps

	mu     sync.RWMutex
	boards map[string]*Board
}

func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Registry{deps: deps, boards: make(map[string]*Board)}
}

// Create starts an empty board with a fresh id.
func (r *Registry) Create(name string) *Board {
	if name == "" {
		name = "Untitled board"
	}
	b := New(uuid.NewString(), name, r.deps)
	r.mu.Lock()
	r.boards[b.ID] = b
	r.mu.Unlock()
	r.deps.Logger.Info("board created", zap.String("board_id", b.ID), zap.String("name", name))
	return b
}

func (r *Registry) Get(id string) (*Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.boards[id]
	if !ok {
		return nil, ErrBoardNotFound
	}
	return b, nil
}

// Open returns the live board for s.ID, restoring s into a new board when
// none is loaded.
func (r *Registry) Open(s Snapshot) (*Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.boards[s.ID]; ok {
		return b, nil
	}
	b := New(s.ID, s.Name, r.deps)
	if !s.CreatedAt.IsZero() {
		b.created = s.CreatedAt
	}
	if err := b.Restore(s); err != nil {
		b.Close()
		return nil, err
	}
	r.boards[b.ID] = b
	return b, nil
}

// Remove closes and forgets a board.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	b, ok := r.boards[id]
	delete(r.boards, id)
	r.mu.Unlock()
	if !ok {
		return ErrBoardNotFound
	}
	b.Close()
	r.deps.Logger.Info("board removed", zap.String("board_id", id))
	return nil
}

// List returns the live boards, oldest first.
func (r *Registry) List() []*Board {
	r.mu.RLock()
	out := make([]*Board, 0, len(r.boards))
	for _, b := range r.boards {
		out = append(out, b)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].created.Equal(out[j].created) {
			return out[i].ID < out[j].ID
		}
		return out[i].created.Before(out[j].created)
	})
	return out
}

func (r *Registry) Close() {
	r.mu.Lock()
	boards := r.boards
	r.boards = make(map[string]*Board)
	r.mu.Unlock()
	for _, b := range boards {
		b.Close()
	}
}

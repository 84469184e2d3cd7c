package board

import (
	"errors"
	"fmt"
	"time"

	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/graph"
)

var ErrBoardBusy = errors.New("board has generation in flight")

// Snapshot is the persisted form of a board.
type Snapshot struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Document  graph.Document `json:"document"`
	Viewport  geom.Viewport  `json:"viewport"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Summary is a listing row; it omits the document.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Snapshot) Summary() Summary {
	return Summary{ID: s.ID, Name: s.Name, Nodes: len(s.Document.Nodes), UpdatedAt: s.UpdatedAt}
}

func (b *Board) Snapshot() Snapshot {
	return Snapshot{
		ID:        b.ID,
		Name:      b.Name(),
		Document:  b.Store.Document(),
		Viewport:  b.Controller.Viewport(),
		CreatedAt: b.created,
		UpdatedAt: b.UpdatedAt(),
	}
}

// Restore replaces the board contents with s. Loading nodes in the
// snapshot come back as failed since their tasks did not survive.
func (b *Board) Restore(s Snapshot) error {
	if b.Studio.Tasks().Len() > 0 {
		return ErrBoardBusy
	}
	doc := s.Document
	doc.Nodes = append([]graph.Node(nil), doc.Nodes...)
	for i := range doc.Nodes {
		if doc.Nodes[i].Meta.Loading {
			doc.Nodes[i].Meta.Loading = false
			doc.Nodes[i].Meta.Failure = "interrupted"
		}
	}
	if err := b.Store.Restore(doc); err != nil {
		return fmt.Errorf("restore board %s: %w", b.ID, err)
	}
	if s.Name != "" {
		b.Rename(s.Name)
	}
	b.Controller.SetViewport(s.Viewport)
	b.publishView()
	return nil
}

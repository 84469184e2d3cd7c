package boardstore

import (
	"context"
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"adcanvas/internal/board"
)

// Cached keeps recently loaded snapshots and the last listing in memory.
// Writes go to the origin first and then refresh the cache.
type Cached struct {
	origin Store
	snaps  *lru.Cache[string, board.Snapshot]

	mu   sync.Mutex
	list []board.Summary
	ok   bool
}

func NewCached(origin Store, size int) (*Cached, error) {
	if size <= 0 {
		size = 256
	}
	snaps, err := lru.New[string, board.Snapshot](size)
	if err != nil {
		return nil, err
	}
	return &Cached{origin: origin, snaps: snaps}, nil
}

func (c *Cached) invalidateList() {
	c.mu.Lock()
	c.list, c.ok = nil, false
	c.mu.Unlock()
}

func (c *Cached) Save(ctx context.Context, s board.Snapshot) error {
	if err := c.origin.Save(ctx, s); err != nil {
		return err
	}
	c.snaps.Add(s.ID, s)
	c.invalidateList()
	return nil
}

func (c *Cached) Load(ctx context.Context, id string) (board.Snapshot, error) {
	if s, ok := c.snaps.Get(id); ok {
		return s, nil
	}
	s, err := c.origin.Load(ctx, id)
	if err != nil {
		return board.Snapshot{}, err
	}
	c.snaps.Add(id, s)
	return s, nil
}

func (c *Cached) List(ctx context.Context) ([]board.Summary, error) {
	c.mu.Lock()
	if c.ok {
		out := append([]board.Summary(nil), c.list...)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	list, err := c.origin.List(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.list, c.ok = append([]board.Summary(nil), list...), true
	c.mu.Unlock()
	return list, nil
}

func (c *Cached) Delete(ctx context.Context, id string) error {
	c.snaps.Remove(id)
	c.invalidateList()
	return c.origin.Delete(ctx, id)
}

// Close releases the origin when it holds a connection.
func (c *Cached) Close() error {
	if cl, ok := c.origin.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

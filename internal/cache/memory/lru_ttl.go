package memory

import (
	"container/list"
	"sync"
	"time"
)

type item[K comparable, V any] struct {
	key     K
	value   V
	size    int
	expires time.Time
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
	Bytes     int
}

// LRUTTL is a thread-safe LRU cache bounded by entry count and, when
// maxBytes > 0, by the caller-reported size of the stored values. Entries
// also expire ttl after their last write.
type LRUTTL[K comparable, V any] struct {
	mu       sync.Mutex
	order    *list.List
	index    map[K]*list.Element
	maxItems int
	maxBytes int
	bytes    int
	ttl      time.Duration
	now      func() time.Time
	stats    Stats
}

func NewLRUTTL[K comparable, V any](maxEntries int, maxBytes int, ttl time.Duration) *LRUTTL[K, V] {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &LRUTTL[K, V]{
		order:    list.New(),
		index:    make(map[K]*list.Element),
		maxItems: maxEntries,
		maxBytes: maxBytes,
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the time source; tests use it to expire entries.
func (c *LRUTTL[K, V]) WithClock(now func() time.Time) *LRUTTL[K, V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *LRUTTL[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	it := el.Value.(*item[K, V])
	if c.now().After(it.expires) {
		c.drop(el)
		c.stats.Misses++
		return zero, false
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	return it.value, true
}

// Set stores value with the given size; a single value larger than maxBytes
// is not kept.
func (c *LRUTTL[K, V]) Set(key K, value V, sizeBytes int) {
	if c == nil {
		return
	}
	sizeBytes = max(sizeBytes, 0)
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.drop(el)
	}
	if c.maxBytes > 0 && sizeBytes > c.maxBytes {
		return
	}
	el := c.order.PushFront(&item[K, V]{key: key, value: value, size: sizeBytes, expires: c.now().Add(c.ttl)})
	c.index[key] = el
	c.bytes += sizeBytes
	for c.order.Len() > c.maxItems || (c.maxBytes > 0 && c.bytes > c.maxBytes) {
		c.drop(c.order.Back())
		c.stats.Evictions++
	}
}

func (c *LRUTTL[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.drop(el)
	}
}

// DeleteFunc removes every key for which match returns true.
func (c *LRUTTL[K, V]) DeleteFunc(match func(K) bool) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, el := range c.index {
		if match(k) {
			c.drop(el)
			n++
		}
	}
	return n
}

func (c *LRUTTL[K, V]) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.index = make(map[K]*list.Element)
	c.bytes = 0
}

func (c *LRUTTL[K, V]) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = c.order.Len()
	s.Bytes = c.bytes
	return s
}

func (c *LRUTTL[K, V]) drop(el *list.Element) {
	if el == nil {
		return
	}
	c.order.Remove(el)
	it := el.Value.(*item[K, V])
	delete(c.index, it.key)
	c.bytes -= it.size
}

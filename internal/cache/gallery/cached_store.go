package gallery

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	memcache "adcanvas/internal/cache/memory"
	galleryrepo "adcanvas/internal/gateway/repository/gallery"
)

type Store = galleryrepo.Store

type CacheConfig struct {
	ImageTTL        time.Duration
	ImageMaxEntries int
	ImageMaxBytes   int

	ListTTL time.Duration

	URLTTL        time.Duration
	URLMaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ImageTTL:        10 * time.Minute,
		ImageMaxEntries: 256,
		ImageMaxBytes:   128 * 1024 * 1024,
		ListTTL:         30 * time.Second,
		URLTTL:          30 * time.Minute,
		URLMaxEntries:   1024,
	}
}

func (c CacheConfig) withDefaults() CacheConfig {
	def := DefaultCacheConfig()
	if c.ImageTTL <= 0 {
		c.ImageTTL = def.ImageTTL
	}
	if c.ImageMaxEntries <= 0 {
		c.ImageMaxEntries = def.ImageMaxEntries
	}
	if c.ImageMaxBytes < 0 {
		c.ImageMaxBytes = def.ImageMaxBytes
	}
	if c.ListTTL <= 0 {
		c.ListTTL = def.ListTTL
	}
	if c.URLTTL <= 0 {
		c.URLTTL = def.URLTTL
	}
	if c.URLMaxEntries <= 0 {
		c.URLMaxEntries = def.URLMaxEntries
	}
	return c
}

// Observer receives one call per cache lookup.
type Observer interface {
	CacheLookup(cache string, hit bool)
}

type MetricsSnapshot struct {
	ImageHits      uint64
	ImageMisses    uint64
	ListHits       uint64
	ListMisses     uint64
	URLHits        uint64
	URLMisses      uint64
	OriginReads    uint64
	OriginWrites   uint64
	OriginReadErr  uint64
	OriginWriteErr uint64
}

type counters struct {
	imageHits, imageMisses        atomic.Uint64
	listHits, listMisses          atomic.Uint64
	urlHits, urlMisses            atomic.Uint64
	originReads, originWrites     atomic.Uint64
	originReadErr, originWriteErr atomic.Uint64
}

type cachedImage struct {
	item  galleryrepo.Item
	image []byte
}

const listKey = "all"

// CachedStore is a read-through, write-through cache in front of a
// gallery store.
type CachedStore struct {
	origin   Store
	observer Observer

	images *memcache.LRUTTL[string, cachedImage]
	lists  *memcache.LRUTTL[string, []galleryrepo.Item]
	urls   *memcache.LRUTTL[string, string]
	m      counters
}

func NewCachedStore(origin Store, cfg CacheConfig, observer Observer) *CachedStore {
	cfg = cfg.withDefaults()
	return &CachedStore{
		origin:   origin,
		observer: observer,
		images:   memcache.NewLRUTTL[string, cachedImage](cfg.ImageMaxEntries, cfg.ImageMaxBytes, cfg.ImageTTL),
		lists:    memcache.NewLRUTTL[string, []galleryrepo.Item](1, 0, cfg.ListTTL),
		urls:     memcache.NewLRUTTL[string, string](cfg.URLMaxEntries, 0, cfg.URLTTL),
	}
}

func (s *CachedStore) observe(cache string, hit bool, hits, misses *atomic.Uint64) {
	if hit {
		hits.Add(1)
	} else {
		misses.Add(1)
	}
	if s.observer != nil {
		s.observer.CacheLookup(cache, hit)
	}
}

func (s *CachedStore) Put(ctx context.Context, item galleryrepo.Item, image []byte) error {
	s.m.originWrites.Add(1)
	if err := s.origin.Put(ctx, item, image); err != nil {
		s.m.originWriteErr.Add(1)
		return err
	}
	item.Size = int64(len(image))
	copied := append([]byte(nil), image...)
	s.images.Set(item.ID, cachedImage{item: item, image: copied}, len(copied))
	s.lists.Delete(listKey)
	s.urls.Delete(item.ID)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, id string) (galleryrepo.Item, []byte, error) {
	id = strings.TrimSpace(id)
	if hit, ok := s.images.Get(id); ok {
		s.observe("gallery_image", true, &s.m.imageHits, &s.m.imageMisses)
		return hit.item, append([]byte(nil), hit.image...), nil
	}
	s.observe("gallery_image", false, &s.m.imageHits, &s.m.imageMisses)
	s.m.originReads.Add(1)
	item, image, err := s.origin.Get(ctx, id)
	if err != nil {
		s.m.originReadErr.Add(1)
		return galleryrepo.Item{}, nil, err
	}
	copied := append([]byte(nil), image...)
	s.images.Set(id, cachedImage{item: item, image: copied}, len(copied))
	return item, append([]byte(nil), copied...), nil
}

func (s *CachedStore) GetURL(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if u, ok := s.urls.Get(id); ok {
		s.observe("gallery_url", true, &s.m.urlHits, &s.m.urlMisses)
		return u, nil
	}
	s.observe("gallery_url", false, &s.m.urlHits, &s.m.urlMisses)
	s.m.originReads.Add(1)
	u, err := s.origin.GetURL(ctx, id)
	if err != nil {
		s.m.originReadErr.Add(1)
		return "", err
	}
	if u != "" {
		s.urls.Set(id, u, len(u))
	}
	return u, nil
}

func (s *CachedStore) List(ctx context.Context) ([]galleryrepo.Item, error) {
	if items, ok := s.lists.Get(listKey); ok {
		s.observe("gallery_list", true, &s.m.listHits, &s.m.listMisses)
		return append([]galleryrepo.Item(nil), items...), nil
	}
	s.observe("gallery_list", false, &s.m.listHits, &s.m.listMisses)
	s.m.originReads.Add(1)
	items, err := s.origin.List(ctx)
	if err != nil {
		s.m.originReadErr.Add(1)
		return nil, err
	}
	copied := append([]galleryrepo.Item(nil), items...)
	s.lists.Set(listKey, copied, 0)
	return append([]galleryrepo.Item(nil), copied...), nil
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		ImageHits:      s.m.imageHits.Load(),
		ImageMisses:    s.m.imageMisses.Load(),
		ListHits:       s.m.listHits.Load(),
		ListMisses:     s.m.listMisses.Load(),
		URLHits:        s.m.urlHits.Load(),
		URLMisses:      s.m.urlMisses.Load(),
		OriginReads:    s.m.originReads.Load(),
		OriginWrites:   s.m.originWrites.Load(),
		OriginReadErr:  s.m.originReadErr.Load(),
		OriginWriteErr: s.m.originWriteErr.Load(),
	}
}

package ipapi

import (
	"container/list"
	"context"
	"sync"

	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/guestmap"
	"github.com/nfrund/guestmap/internal/observability"
)

// CachedLocator wraps an IPLocator with an in-memory LRU cache. Only
// successful lookups of public addresses are cached; the self-lookup for
// private addresses depends on the server's own egress and is left alone.
type CachedLocator struct {
	inner   guestmap.IPLocator
	metrics *observability.Metrics

	mu         sync.Mutex
	maxEntries int
	order      *list.List
	entries    map[string]*list.Element
}

type cacheEntry struct {
	ip     string
	coords domain.Coordinates
}

// NewCachedLocator creates a cache decorator holding at most maxEntries.
func NewCachedLocator(inner guestmap.IPLocator, maxEntries int, metrics *observability.Metrics) *CachedLocator {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &CachedLocator{
		inner:      inner,
		metrics:    metrics,
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// Lookup implements guestmap.IPLocator.
func (c *CachedLocator) Lookup(ctx context.Context, ip string) (domain.Coordinates, error) {
	if !IsPublic(ip) {
		return c.inner.Lookup(ctx, ip)
	}
	if coords, ok := c.get(ip); ok {
		c.metrics.IPCache.WithLabelValues("hit").Inc()
		return coords, nil
	}
	c.metrics.IPCache.WithLabelValues("miss").Inc()

	coords, err := c.inner.Lookup(ctx, ip)
	if err != nil {
		return coords, err
	}
	c.put(ip, coords)
	return coords, nil
}

// Len returns the number of cached addresses.
func (c *CachedLocator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *CachedLocator) get(ip string) (domain.Coordinates, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[ip]
	if !ok {
		return domain.Coordinates{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).coords, true
}

func (c *CachedLocator) put(ip string, coords domain.Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[ip]; ok {
		el.Value.(*cacheEntry).coords = coords
		c.order.MoveToFront(el)
		return
	}
	c.entries[ip] = c.order.PushFront(&cacheEntry{ip: ip, coords: coords})

	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).ip)
	}
}

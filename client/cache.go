package client

import (
	"container/list"

	"pod-catalog/internal/catalog"
)

// pageKey identifies a cached page by the full filter tuple, not just the
// page number, so a filter change can never surface a stale page.
type pageKey struct {
	page     int
	limit    int
	search   string
	category string
}

// pageCache is a bounded LRU of fetched pages. It is write-through only:
// fulfilled fetches populate it, nothing reads it back into live state
// automatically. Not safe for concurrent use; the owning State serializes
// access.
type pageCache struct {
	capacity int
	entries  map[pageKey]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key   pageKey
	items []catalog.Product
}

func newPageCache(capacity int) *pageCache {
	if capacity < 1 {
		capacity = 1
	}
	return &pageCache{
		capacity: capacity,
		entries:  make(map[pageKey]*list.Element),
		order:    list.New(),
	}
}

func (c *pageCache) get(k pageKey) ([]catalog.Product, bool) {
	el, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	entry := el.Value.(*cacheEntry)
	out := make([]catalog.Product, len(entry.items))
	copy(out, entry.items)
	return out, true
}

func (c *pageCache) put(k pageKey, items []catalog.Product) {
	stored := make([]catalog.Product, len(items))
	copy(stored, items)

	if el, ok := c.entries[k]; ok {
		el.Value.(*cacheEntry).items = stored
		c.order.MoveToFront(el)
		return
	}

	c.entries[k] = c.order.PushFront(&cacheEntry{key: k, items: stored})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *pageCache) purge() {
	c.entries = make(map[pageKey]*list.Element)
	c.order.Init()
}

func (c *pageCache) len() int {
	return c.order.Len()
}

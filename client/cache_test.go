package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pod-catalog/internal/catalog"
)

func TestPageCachePutGet(t *testing.T) {
	c := newPageCache(4)
	k := pageKey{page: 1, limit: 10, category: "all"}

	_, ok := c.get(k)
	assert.False(t, ok)

	items := []catalog.Product{namedProduct("Mug")}
	c.put(k, items)

	got, ok := c.get(k)
	require.True(t, ok)
	require.Len(t, got, 1)

	// Entries are copies both ways.
	items[0].Name = "changed"
	got2, _ := c.get(k)
	assert.Equal(t, "Mug", got2[0].Name)
	got[0].Name = "also changed"
	got3, _ := c.get(k)
	assert.Equal(t, "Mug", got3[0].Name)
}

func TestPageCacheDistinctKeys(t *testing.T) {
	c := newPageCache(4)
	c.put(pageKey{page: 1, limit: 10, category: "all"}, []catalog.Product{namedProduct("A")})

	_, ok := c.get(pageKey{page: 1, limit: 10, category: "c1"})
	assert.False(t, ok)
	_, ok = c.get(pageKey{page: 1, limit: 10, search: "mug", category: "all"})
	assert.False(t, ok)
}

func TestPageCacheEvictionOrder(t *testing.T) {
	c := newPageCache(2)
	k1 := pageKey{page: 1}
	k2 := pageKey{page: 2}
	k3 := pageKey{page: 3}

	c.put(k1, nil)
	c.put(k2, nil)

	// Touch k1 so k2 becomes the eviction candidate.
	_, ok := c.get(k1)
	require.True(t, ok)

	c.put(k3, nil)
	assert.Equal(t, 2, c.len())

	_, ok = c.get(k2)
	assert.False(t, ok)
	_, ok = c.get(k1)
	assert.True(t, ok)
	_, ok = c.get(k3)
	assert.True(t, ok)
}

func TestPageCachePurge(t *testing.T) {
	c := newPageCache(4)
	c.put(pageKey{page: 1}, nil)
	c.put(pageKey{page: 2}, nil)
	c.purge()

	assert.Equal(t, 0, c.len())
	_, ok := c.get(pageKey{page: 1})
	assert.False(t, ok)
}

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU_SetGet(t *testing.T) {
	c := NewLRUBlockCache(100)
	k := Key{Path: "chk/rows", Offset: 1}

	c.Set(k, []byte("block"))

	val, ok := c.Get(k)
	assert.True(t, ok)
	assert.Equal(t, []byte("block"), val)
	assert.Equal(t, int64(5), c.Size())
}

func TestLRU_EdgeCases(t *testing.T) {
	c := NewLRUBlockCache(50)
	k := Key{Path: "chk/rows", Offset: 1}

	// Item larger than capacity is not cached.
	c.Set(k, make([]byte, 60))
	_, ok := c.Get(k)
	assert.False(t, ok)

	// Update existing item, growing and shrinking.
	c.Set(k, make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())

	c.Set(k, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())

	c.Set(k, make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRUBlockCache(30)

	c.Set(Key{Path: "a", Offset: 0}, make([]byte, 10))
	c.Set(Key{Path: "b", Offset: 0}, make([]byte, 10))
	c.Set(Key{Path: "c", Offset: 0}, make([]byte, 10))

	// Touch "a" so "b" is the least recently used.
	_, ok := c.Get(Key{Path: "a", Offset: 0})
	assert.True(t, ok)

	c.Set(Key{Path: "d", Offset: 0}, make([]byte, 10))

	_, ok = c.Get(Key{Path: "b", Offset: 0})
	assert.False(t, ok, "LRU entry should have been evicted")
	_, ok = c.Get(Key{Path: "a", Offset: 0})
	assert.True(t, ok)
	assert.Equal(t, int64(30), c.Size())
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRUBlockCache(100)
	k := Key{Path: "chk/model", Offset: 1}

	c.Set(k, []byte{1})
	c.Get(k)                             // hit
	c.Get(Key{Path: "other", Offset: 2}) // miss

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_Invalidate(t *testing.T) {
	c := NewLRUBlockCache(100)
	c.Set(Key{Path: "chk/rows", Offset: 1}, []byte("a"))
	c.Set(Key{Path: "chk/rows", Offset: 2}, []byte("b"))
	c.Set(Key{Path: "chk/model", Offset: 1}, []byte("c"))

	c.Invalidate(func(k Key) bool {
		return k.Path == "chk/rows"
	})

	_, ok := c.Get(Key{Path: "chk/rows", Offset: 1})
	assert.False(t, ok)
	_, ok = c.Get(Key{Path: "chk/model", Offset: 1})
	assert.True(t, ok)
}

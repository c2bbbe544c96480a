package world

import (
	"container/list"

	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// Cache is a bounded chunk cache evicting in insertion order. It is not safe
// for concurrent use; World guards it with its mutex.
type Cache struct {
	capacity int
	batch    int
	order    *list.List // *chunk.Chunk, oldest first
	index    map[uint64]*list.Element
	evicted  int
}

// NewCache returns a cache holding at most capacity chunks. When full it drops
// the oldest batch entries at once.
func NewCache(capacity, batch int) *Cache {
	return &Cache{
		capacity: max(capacity, 1),
		batch:    min(max(batch, 1), max(capacity, 1)),
		order:    list.New(),
		index:    make(map[uint64]*list.Element, capacity),
	}
}

// Get returns the cached chunk at p.
func (c *Cache) Get(p chunk.Pos) (*chunk.Chunk, bool) {
	e, ok := c.index[CantorKey(p.X, p.Z)]
	if !ok {
		return nil, false
	}
	return e.Value.(*chunk.Chunk), true
}

// LoadOrCreate returns the cached chunk at p, or inserts a new fresh one.
// A hit does not refresh the entry's position in the eviction order.
func (c *Cache) LoadOrCreate(p chunk.Pos) (ch *chunk.Chunk, created bool) {
	if ch, ok := c.Get(p); ok {
		return ch, false
	}
	if c.order.Len() >= c.capacity {
		c.evict()
	}
	ch = chunk.New(p)
	c.index[CantorKey(p.X, p.Z)] = c.order.PushBack(ch)
	return ch, true
}

func (c *Cache) evict() {
	for range c.batch {
		e := c.order.Front()
		if e == nil {
			return
		}
		ch := c.order.Remove(e).(*chunk.Chunk)
		p := ch.Pos()
		delete(c.index, CantorKey(p.X, p.Z))
		c.evicted++
	}
}

// Len returns the number of cached chunks.
func (c *Cache) Len() int { return c.order.Len() }

// Cap returns the cache capacity.
func (c *Cache) Cap() int { return c.capacity }

// Evicted returns the total number of evictions so far.
func (c *Cache) Evicted() int { return c.evicted }

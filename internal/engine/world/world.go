package world

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel/pkg/world/block"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// Options configures a World.
type Options struct {
	ViewDistance  int // active grid edge in chunks
	CacheCapacity int
	EvictionBatch int
	Daylight      float32
}

// World owns the active chunk grid around the player and the chunk cache.
// The mutex guards the grid, the cache and the player position; chunk
// contents are owned by the update goroutine.
type World struct {
	mu     sync.RWMutex
	view   int
	slots  []*chunk.Chunk
	cache  *Cache
	player mgl32.Vec3
	win    window

	daylight float32
}

// StreamResult reports one Stream call.
type StreamResult struct {
	Loaded   []chunk.Pos // chunks placed into the grid
	Unloaded []chunk.Pos // chunks that left the grid
	Skipped  int         // stale slots left alone because their chunk was updating
}

// New creates a World centered on the origin with every slot filled.
func New(opts Options) *World {
	view := max(opts.ViewDistance, 1)
	w := &World{
		view:     view,
		slots:    make([]*chunk.Chunk, view*view),
		cache:    NewCache(opts.CacheCapacity, opts.EvictionBatch),
		win:      newWindow(view, chunk.Pos{}),
		daylight: opts.Daylight,
	}
	w.Stream()
	return w
}

// ViewDistance returns the grid edge length in chunks.
func (w *World) ViewDistance() int { return w.view }

// Daylight returns the global brightness factor.
func (w *World) Daylight() float32 { return w.daylight }

// SetPlayerPosition records the player position. The grid follows on the
// next Stream call.
func (w *World) SetPlayerPosition(p mgl32.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.player = p
}

// PlayerPosition returns the last recorded player position.
func (w *World) PlayerPosition() mgl32.Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.player
}

// PlayerChunk returns the chunk coordinate the player stands in.
func (w *World) PlayerChunk() chunk.Pos {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return playerChunk(w.player)
}

func playerChunk(p mgl32.Vec3) chunk.Pos {
	return chunk.Pos{
		X: chunk.FloorDiv(int(math.Floor(float64(p.X()))), chunk.SizeX),
		Z: chunk.FloorDiv(int(math.Floor(float64(p.Z()))), chunk.SizeZ),
	}
}

// Stream re-centres the grid on the player. Every slot whose occupant does not
// match the coordinate it should hold is refilled from the cache; the
// newcomer and its in-grid neighbours are marked dirty. Slots whose occupant
// is mid-update are skipped and retried on the next call.
func (w *World) Stream() StreamResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	var res StreamResult
	w.win = newWindow(w.view, playerChunk(w.player))
	for i, cur := range w.slots {
		want := w.win.want(i)
		if cur != nil && cur.Pos() == want {
			continue
		}
		if cur != nil && cur.IsUpdating() {
			res.Skipped++
			continue
		}

		next, _ := w.cache.LoadOrCreate(want)
		w.slots[i] = next
		if cur != nil {
			res.Unloaded = append(res.Unloaded, cur.Pos())
		}
		res.Loaded = append(res.Loaded, want)

		next.SetDirty(true)
		next.SetLightDirty(true)
		for _, n := range want.Neighbors() {
			if nc, ok := w.chunkAtLocked(n); ok {
				nc.SetDirty(true)
				nc.SetLightDirty(true)
			}
		}
	}
	return res
}

// ChunkAt returns the active chunk at p, if it is in the grid.
func (w *World) ChunkAt(p chunk.Pos) (*chunk.Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chunkAtLocked(p)
}

func (w *World) chunkAtLocked(p chunk.Pos) (*chunk.Chunk, bool) {
	if p.Y != 0 {
		return nil, false
	}
	c := w.slots[w.win.slotOf(p)]
	if c == nil || c.Pos() != p {
		return nil, false
	}
	return c, true
}

// Contains reports whether p is currently active.
func (w *World) Contains(p chunk.Pos) bool {
	_, ok := w.ChunkAt(p)
	return ok
}

func (w *World) locate(x, y, z int) (c *chunk.Chunk, lx, ly, lz int, ok bool) {
	p, lx, ly, lz, ok := chunk.Split(x, y, z)
	if !ok {
		return nil, 0, 0, 0, false
	}
	c, ok = w.ChunkAt(p)
	return c, lx, ly, lz, ok
}

// GetBlock returns the block at world coordinates, or air outside the grid.
func (w *World) GetBlock(x, y, z int) block.ID {
	c, lx, ly, lz, ok := w.locate(x, y, z)
	if !ok {
		return block.Air
	}
	id, _ := c.Block(lx, ly, lz)
	return id
}

// SetBlock stores a block and marks the owner and the neighbours sharing the
// edited column's boundary dirty. All cardinal neighbours are marked for
// light diffusion since the owner's light is rebuilt from scratch. Outside
// the grid it is a no-op and reports false.
func (w *World) SetBlock(x, y, z int, id block.ID) bool {
	c, lx, ly, lz, ok := w.locate(x, y, z)
	if !ok || !c.SetBlock(lx, ly, lz, id) {
		return false
	}
	w.markBoundary(c, lx, lz)
	for _, n := range c.Pos().Neighbors() {
		if nc, ok := w.ChunkAt(n); ok {
			nc.SetLightDirty(true)
		}
	}
	return true
}

// GetLight returns the light at world coordinates, or 0 outside the grid.
func (w *World) GetLight(x, y, z int) uint8 {
	c, lx, ly, lz, ok := w.locate(x, y, z)
	if !ok {
		return chunk.MinLight
	}
	v, _ := c.Light(lx, ly, lz)
	return v
}

// SetLight stores a light value with the same dirty marking as SetBlock's
// geometry side.
func (w *World) SetLight(x, y, z int, v uint8) bool {
	c, lx, ly, lz, ok := w.locate(x, y, z)
	if !ok || !c.SetLight(lx, ly, lz, v) {
		return false
	}
	w.markBoundary(c, lx, lz)
	return true
}

func (w *World) markBoundary(c *chunk.Chunk, lx, lz int) {
	for _, p := range c.BoundaryNeighbors(lx, lz) {
		if nc, ok := w.ChunkAt(p); ok {
			nc.SetDirty(true)
		}
	}
}

// BlockAt implements chunk.Accessor.
func (w *World) BlockAt(x, y, z int) block.ID { return w.GetBlock(x, y, z) }

// LightAt implements chunk.Accessor.
func (w *World) LightAt(x, y, z int) uint8 { return w.GetLight(x, y, z) }

// PutLight implements chunk.Accessor.
func (w *World) PutLight(x, y, z int, v uint8) bool {
	c, lx, ly, lz, ok := w.locate(x, y, z)
	if !ok {
		return false
	}
	return c.PutLight(lx, ly, lz, v)
}

// Chunks returns a snapshot of the active chunks.
func (w *World) Chunks() []*chunk.Chunk {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*chunk.Chunk, 0, len(w.slots))
	for _, c := range w.slots {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Pending returns the active chunks that need any pipeline stage.
func (w *World) Pending() []*chunk.Chunk {
	var out []*chunk.Chunk
	for _, c := range w.Chunks() {
		if c.NeedsUpdate() {
			out = append(out, c)
		}
	}
	return out
}

// Stats is a point-in-time summary of the world.
type Stats struct {
	PlayerChunk chunk.Pos `json:"player_chunk"`
	Active      int       `json:"active"`
	Pending     int       `json:"pending"`
	Cached      int       `json:"cached"`
	CacheCap    int       `json:"cache_capacity"`
	Evicted     int       `json:"evicted"`
}

// Stats summarizes the grid and cache.
func (w *World) Stats() Stats {
	pending := len(w.Pending())

	w.mu.RLock()
	defer w.mu.RUnlock()
	active := 0
	for _, c := range w.slots {
		if c != nil {
			active++
		}
	}
	return Stats{
		PlayerChunk: playerChunk(w.player),
		Active:      active,
		Pending:     pending,
		Cached:      w.cache.Len(),
		CacheCap:    w.cache.Cap(),
		Evicted:     w.cache.Evicted(),
	}
}

func (w *World) String() string {
	s := w.Stats()
	return fmt.Sprintf("world: player chunk %s, %d active, %d pending, cache %d/%d (%d evicted)",
		s.PlayerChunk, s.Active, s.Pending, s.Cached, s.CacheCap, s.Evicted)
}

package chunk

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/atomic"

	"github.com/go-theft-craft/voxel/pkg/world/block"
)

// Chunk dimensions in blocks. A chunk spans the full world height.
const (
	SizeX  = 16
	SizeY  = 128
	SizeZ  = 16
	Volume = SizeX * SizeY * SizeZ
)

// Light levels.
const (
	MinLight        uint8 = 0
	MaxLight        uint8 = 16
	LightAbsorption uint8 = 1
)

// Pos is a chunk coordinate in chunk-grid space. Y is always 0.
type Pos struct{ X, Y, Z int }

func (p Pos) String() string { return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z) }

// Origin returns the world block coordinate of local (0,0,0).
func (p Pos) Origin() (x, y, z int) {
	return p.X * SizeX, p.Y * SizeY, p.Z * SizeZ
}

// Neighbors returns the four cardinal neighbours: +X, -X, +Z, -Z.
func (p Pos) Neighbors() [4]Pos {
	return [4]Pos{
		{p.X + 1, p.Y, p.Z},
		{p.X - 1, p.Y, p.Z},
		{p.X, p.Y, p.Z + 1},
		{p.X, p.Y, p.Z - 1},
	}
}

// Chunk holds block ids and light for one 16×128×16 region.
//
// Block and light arrays are mutated only by the update goroutine. The flags
// are atomic so the streaming and render sides may read them.
type Chunk struct {
	pos    Pos
	blocks [Volume]block.ID
	light  [Volume]uint8

	fresh      atomic.Bool // generation passes have not run
	dirty      atomic.Bool // geometry is stale
	lightDirty atomic.Bool // diffusion must run before meshing
	relight    atomic.Bool // light must be cleared and sunlight recomputed
	updating   atomic.Bool // held by the update goroutine

	mesh *Mesh
}

// New creates an empty, fresh chunk at pos.
func New(pos Pos) *Chunk {
	c := &Chunk{pos: pos}
	c.fresh.Store(true)
	c.dirty.Store(true)
	c.lightDirty.Store(true)
	c.relight.Store(true)
	return c
}

// Pos returns the chunk coordinate.
func (c *Chunk) Pos() Pos { return c.pos }

// InBounds reports whether local coordinates address a cell of this chunk.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < SizeX && y >= 0 && y < SizeY && z >= 0 && z < SizeZ
}

func index(x, y, z int) int {
	return (y*SizeZ+z)*SizeX + x
}

// Block returns the block id at local coordinates.
func (c *Chunk) Block(x, y, z int) (block.ID, bool) {
	if !InBounds(x, y, z) {
		return block.Air, false
	}
	return c.blocks[index(x, y, z)], true
}

// SetBlock stores id at local coordinates and marks geometry and light stale.
// It reports false for coordinates outside the chunk.
func (c *Chunk) SetBlock(x, y, z int, id block.ID) bool {
	if !InBounds(x, y, z) {
		return false
	}
	c.blocks[index(x, y, z)] = id
	c.dirty.Store(true)
	c.lightDirty.Store(true)
	c.relight.Store(true)
	return true
}

// Light returns the light level at local coordinates.
func (c *Chunk) Light(x, y, z int) (uint8, bool) {
	if !InBounds(x, y, z) {
		return 0, false
	}
	return c.light[index(x, y, z)], true
}

// SetLight stores v (clamped to MaxLight) and marks geometry stale.
func (c *Chunk) SetLight(x, y, z int, v uint8) bool {
	if !InBounds(x, y, z) {
		return false
	}
	c.light[index(x, y, z)] = min(v, MaxLight)
	c.dirty.Store(true)
	return true
}

// PutLight stores v (clamped to MaxLight) without marking anything stale.
// Light diffusion uses it for writes into neighbouring chunks.
func (c *Chunk) PutLight(x, y, z int, v uint8) bool {
	if !InBounds(x, y, z) {
		return false
	}
	c.light[index(x, y, z)] = min(v, MaxLight)
	return true
}

// ClearLight sets every cell to MinLight.
func (c *Chunk) ClearLight() {
	for i := range c.light {
		c.light[i] = MinLight
	}
}

// BoundaryNeighbors returns the neighbouring chunks that share a face with
// local column (x, z).
func (c *Chunk) BoundaryNeighbors(x, z int) []Pos {
	n := c.pos.Neighbors()
	var out []Pos
	if x == SizeX-1 {
		out = append(out, n[0])
	}
	if x == 0 {
		out = append(out, n[1])
	}
	if z == SizeZ-1 {
		out = append(out, n[2])
	}
	if z == 0 {
		out = append(out, n[3])
	}
	return out
}

// BlockCount returns the number of non-air cells.
func (c *Chunk) BlockCount() int {
	n := 0
	for _, b := range c.blocks {
		if b != block.Air {
			n++
		}
	}
	return n
}

// Center returns the world-space center of the chunk's footprint at y=0.
func (c *Chunk) Center() mgl32.Vec3 {
	x, _, z := c.pos.Origin()
	return mgl32.Vec3{float32(x) + SizeX/2, 0, float32(z) + SizeZ/2}
}

// DistanceSq returns the squared horizontal distance from p to the chunk center.
func (c *Chunk) DistanceSq(p mgl32.Vec3) float32 {
	d := c.Center().Sub(mgl32.Vec3{p.X(), 0, p.Z()})
	return d.Dot(d)
}

func (c *Chunk) IsFresh() bool        { return c.fresh.Load() }
func (c *Chunk) SetFresh(v bool)      { c.fresh.Store(v) }
func (c *Chunk) IsDirty() bool        { return c.dirty.Load() }
func (c *Chunk) SetDirty(v bool)      { c.dirty.Store(v) }
func (c *Chunk) IsLightDirty() bool   { return c.lightDirty.Load() }
func (c *Chunk) SetLightDirty(v bool) { c.lightDirty.Store(v) }
func (c *Chunk) NeedsRelight() bool   { return c.relight.Load() }
func (c *Chunk) SetRelight(v bool)    { c.relight.Store(v) }

// IsUpdating reports whether the update goroutine currently holds the chunk.
func (c *Chunk) IsUpdating() bool { return c.updating.Load() }

// TryBeginUpdate marks the chunk as held. It fails if already held.
func (c *Chunk) TryBeginUpdate() bool { return c.updating.CompareAndSwap(false, true) }

// EndUpdate releases the hold taken by TryBeginUpdate.
func (c *Chunk) EndUpdate() { c.updating.Store(false) }

// NeedsUpdate reports whether any stage of the update pipeline must run.
func (c *Chunk) NeedsUpdate() bool {
	return c.IsFresh() || c.IsDirty() || c.IsLightDirty()
}

// Mesh returns the last geometry built for the chunk, or nil.
func (c *Chunk) Mesh() *Mesh { return c.mesh }

// SetMesh replaces the chunk's geometry.
func (c *Chunk) SetMesh(m *Mesh) { c.mesh = m }

func (c *Chunk) String() string {
	return fmt.Sprintf("chunk %s (fresh: %v, dirty: %v, lightDirty: %v)", c.pos, c.IsFresh(), c.IsDirty(), c.IsLightDirty())
}

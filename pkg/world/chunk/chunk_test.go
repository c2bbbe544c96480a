package chunk

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel/pkg/world/block"
)

// testWorld is a minimal Accessor over a handful of chunks.
type testWorld map[Pos]*Chunk

func (w testWorld) locate(x, y, z int) (*Chunk, int, int, int) {
	p, lx, ly, lz, ok := Split(x, y, z)
	if !ok {
		return nil, 0, 0, 0
	}
	return w[p], lx, ly, lz
}

func (w testWorld) BlockAt(x, y, z int) block.ID {
	c, lx, ly, lz := w.locate(x, y, z)
	if c == nil {
		return block.Air
	}
	id, _ := c.Block(lx, ly, lz)
	return id
}

func (w testWorld) LightAt(x, y, z int) uint8 {
	c, lx, ly, lz := w.locate(x, y, z)
	if c == nil {
		return MinLight
	}
	v, _ := c.Light(lx, ly, lz)
	return v
}

func (w testWorld) PutLight(x, y, z int, v uint8) bool {
	c, lx, ly, lz := w.locate(x, y, z)
	if c == nil || !InBounds(lx, ly, lz) {
		return false
	}
	c.light[index(lx, ly, lz)] = v
	return true
}

func fill(c *Chunk, id block.ID, fromY, toY int) {
	for y := fromY; y <= toY; y++ {
		for z := range SizeZ {
			for x := range SizeX {
				c.SetBlock(x, y, z, id)
			}
		}
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 1},
		{-1, 16, -1},
		{-16, 16, -1},
		{-17, 16, -2},
	}
	for _, tt := range tests {
		if got := FloorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("FloorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	p, lx, ly, lz, ok := Split(-1, 5, 17)
	if !ok {
		t.Fatal("Split reported out of bounds")
	}
	if p != (Pos{X: -1, Z: 1}) || lx != 15 || ly != 5 || lz != 1 {
		t.Errorf("Split(-1,5,17) = %v %d %d %d", p, lx, ly, lz)
	}
	if _, _, _, _, ok := Split(0, SizeY, 0); ok {
		t.Error("Split above world height should fail")
	}
	if _, _, _, _, ok := Split(0, -1, 0); ok {
		t.Error("Split below world should fail")
	}
}

func TestBlockRoundTrip(t *testing.T) {
	c := New(Pos{})
	c.SetDirty(false)
	if !c.SetBlock(3, 40, 7, block.Stone) {
		t.Fatal("SetBlock in bounds returned false")
	}
	if got, ok := c.Block(3, 40, 7); !ok || got != block.Stone {
		t.Errorf("Block(3,40,7) = %d, %v, want stone", got, ok)
	}
	if !c.IsDirty() || !c.IsLightDirty() || !c.NeedsRelight() {
		t.Error("SetBlock should mark the chunk stale")
	}
	if c.SetBlock(SizeX, 0, 0, block.Stone) {
		t.Error("SetBlock out of bounds returned true")
	}
	if _, ok := c.Block(0, SizeY, 0); ok {
		t.Error("Block out of bounds reported ok")
	}
	if c.BlockCount() != 1 {
		t.Errorf("BlockCount() = %d, want 1", c.BlockCount())
	}
}

func TestSetLightClamps(t *testing.T) {
	c := New(Pos{})
	c.SetLight(0, 0, 0, 200)
	if got, _ := c.Light(0, 0, 0); got != MaxLight {
		t.Errorf("Light = %d, want %d", got, MaxLight)
	}
}

func TestBoundaryNeighbors(t *testing.T) {
	c := New(Pos{X: 2, Z: 3})
	if n := c.BoundaryNeighbors(5, 5); len(n) != 0 {
		t.Errorf("interior column has neighbours %v", n)
	}
	n := c.BoundaryNeighbors(0, SizeZ-1)
	if len(n) != 2 || n[0] != (Pos{X: 1, Z: 3}) || n[1] != (Pos{X: 2, Z: 4}) {
		t.Errorf("corner neighbours = %v", n)
	}
}

func TestUpdateHold(t *testing.T) {
	c := New(Pos{})
	if !c.TryBeginUpdate() {
		t.Fatal("first TryBeginUpdate failed")
	}
	if c.TryBeginUpdate() {
		t.Error("second TryBeginUpdate succeeded")
	}
	c.EndUpdate()
	if c.IsUpdating() {
		t.Error("still updating after EndUpdate")
	}
}

func TestBlockCountAndDistance(t *testing.T) {
	c := New(Pos{X: 1, Z: -1})
	fill(c, block.Dirt, 0, 1)
	c.SetBlock(3, 40, 3, block.RedFlower)
	if got := c.BlockCount(); got != 2*SizeX*SizeZ+1 {
		t.Errorf("BlockCount() = %d, want %d", got, 2*SizeX*SizeZ+1)
	}

	if got := c.Center(); got != (mgl32.Vec3{24, 0, -8}) {
		t.Errorf("Center() = %v, want [24 0 -8]", got)
	}
	if got := c.DistanceSq(mgl32.Vec3{24, 90, -4}); got != 16 {
		t.Errorf("DistanceSq() = %v, want 16", got)
	}
}

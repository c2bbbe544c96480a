package chunk

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel/pkg/world/block"
)

func approx(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-4 }

func newMesher() *Mesher { return NewMesher(block.Classic(), DefaultDaylight) }

func TestMesherEmptyChunk(t *testing.T) {
	c := New(Pos{})
	c.CalcSunlight(block.Classic())
	if m := newMesher().Build(c, nil); !m.Empty() {
		t.Errorf("air chunk produced %d quads", m.Quads())
	}
}

func TestMesherSingleBlock(t *testing.T) {
	reg := block.Classic()
	c := New(Pos{})
	c.SetBlock(8, 64, 8, block.Stone)
	c.CalcSunlight(reg)

	m := newMesher().Build(c, nil)
	if got := m.Opaque.Quads(); got != 6 {
		t.Fatalf("Opaque quads = %d, want 6", got)
	}
	if !m.Translucent.Empty() || !m.Billboard.Empty() {
		t.Error("stone leaked into translucent or billboard buckets")
	}
	if n := len(m.Opaque.Vertices); n != len(m.Opaque.TexCoords) || n != len(m.Opaque.Colors) {
		t.Errorf("buffer lengths differ: %d %d %d", n, len(m.Opaque.TexCoords), len(m.Opaque.Colors))
	}

	// Faces are emitted top, front, back, left, right, bottom.
	top := m.Opaque.Colors[0]
	if !approx(top[0], DefaultDaylight) || top[3] != 1 {
		t.Errorf("top color = %v, want %v", top, DefaultDaylight)
	}
	side := m.Opaque.Colors[4]
	wantSide := (1 - OcclusionIntensity - BlockSideDimming) * DefaultDaylight
	if !approx(side[0], wantSide) {
		t.Errorf("front color = %v, want %v", side[0], wantSide)
	}
	bottom := m.Opaque.Colors[20]
	if bottom[0] != 0 {
		t.Errorf("bottom color = %v, want dark", bottom)
	}
}

func TestMesherVertexPlacement(t *testing.T) {
	reg := block.Classic()
	c := New(Pos{X: 1, Z: -1})
	c.SetBlock(0, 0, 0, block.Grass)
	c.CalcSunlight(reg)

	m := newMesher().Build(c, nil)
	if got, want := m.Opaque.Vertices[0], (mgl32.Vec3{15.5, 0.5, -15.5}); got != want {
		t.Errorf("first top vertex = %v, want %v", got, want)
	}
	if got := m.Opaque.TexCoords[0]; got != (mgl32.Vec2{0, 0}) {
		t.Errorf("first top uv = %v, want origin", got)
	}
	if got := m.Opaque.TexCoords[1]; got != (mgl32.Vec2{block.TileWidth, 0}) {
		t.Errorf("second top uv = %v", got)
	}
}

func TestMesherCullsSharedFaces(t *testing.T) {
	reg := block.Classic()
	c := New(Pos{})
	c.SetBlock(4, 20, 4, block.Stone)
	c.SetBlock(5, 20, 4, block.Stone)
	c.CalcSunlight(reg)

	if got := newMesher().Build(c, nil).Opaque.Quads(); got != 10 {
		t.Errorf("two adjacent stones: %d quads, want 10", got)
	}
}

func TestMesherTranslucentNeighbours(t *testing.T) {
	reg := block.Classic()
	tests := []struct {
		name                string
		a, b                block.ID
		opaque, translucent int
	}{
		{"stone next to water", block.Stone, block.Water, 6, 5},
		{"water next to water", block.Water, block.Water, 0, 10},
		{"leaves next to leaves", block.Leaves, block.Leaves, 0, 12},
		{"stone next to leaves", block.Stone, block.Leaves, 6, 5},
	}
	for _, tt := range tests {
		c := New(Pos{})
		c.SetBlock(4, 20, 4, tt.a)
		c.SetBlock(5, 20, 4, tt.b)
		c.CalcSunlight(reg)

		m := newMesher().Build(c, nil)
		if got := m.Opaque.Quads(); got != tt.opaque {
			t.Errorf("%s: opaque = %d, want %d", tt.name, got, tt.opaque)
		}
		if got := m.Translucent.Quads(); got != tt.translucent {
			t.Errorf("%s: translucent = %d, want %d", tt.name, got, tt.translucent)
		}
	}
}

func TestMesherBillboard(t *testing.T) {
	reg := block.Classic()
	c := New(Pos{})
	c.SetBlock(8, 64, 8, block.Stone)
	c.SetBlock(8, 65, 8, block.RedFlower)
	c.CalcSunlight(reg)

	m := newMesher().Build(c, nil)
	if got := m.Billboard.Quads(); got != 2 {
		t.Errorf("billboard quads = %d, want 2", got)
	}
	// The flower does not hide the stone's top face.
	if got := m.Opaque.Quads(); got != 6 {
		t.Errorf("opaque quads = %d, want 6", got)
	}
}

func TestMesherFaceVisible(t *testing.T) {
	m := newMesher()
	tests := []struct {
		neighbor, current block.ID
		want              bool
	}{
		{block.Air, block.Stone, true},
		{block.Stone, block.Air, false},
		{block.Stone, block.Stone, false},
		{block.Water, block.Stone, true},
		{block.Stone, block.Water, false},
		{block.Leaves, block.Leaves, true},
	}
	for _, tt := range tests {
		if got := m.FaceVisible(tt.neighbor, tt.current); got != tt.want {
			t.Errorf("FaceVisible(%d, %d) = %v, want %v", tt.neighbor, tt.current, got, tt.want)
		}
	}
}

func TestMesherAcrossChunkBoundary(t *testing.T) {
	reg := block.Classic()
	a := New(Pos{X: 0})
	b := New(Pos{X: 1})
	a.SetBlock(SizeX-1, 20, 0, block.Stone)
	b.SetBlock(0, 20, 0, block.Stone)
	a.CalcSunlight(reg)
	b.CalcSunlight(reg)
	w := testWorld{a.Pos(): a, b.Pos(): b}

	mesher := newMesher()
	if got := mesher.Build(a, w).Opaque.Quads(); got != 5 {
		t.Errorf("with neighbour: %d quads, want 5", got)
	}
	if got := mesher.Build(a, nil).Opaque.Quads(); got != 6 {
		t.Errorf("without neighbour: %d quads, want 6", got)
	}
}

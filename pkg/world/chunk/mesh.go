package chunk

import "github.com/go-gl/mathgl/mgl32"

// Buffers holds parallel per-vertex arrays. Every four vertices form a quad.
type Buffers struct {
	Vertices  []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Colors    []mgl32.Vec4
}

// Quads returns the number of quads in the buffers.
func (b *Buffers) Quads() int { return len(b.Vertices) / 4 }

// Empty reports whether the buffers hold no geometry.
func (b *Buffers) Empty() bool { return len(b.Vertices) == 0 }

func (b *Buffers) quad(v [4]mgl32.Vec3, uv [4]mgl32.Vec2, color mgl32.Vec4) {
	b.Vertices = append(b.Vertices, v[:]...)
	b.TexCoords = append(b.TexCoords, uv[:]...)
	for range 4 {
		b.Colors = append(b.Colors, color)
	}
}

// Mesh is the render geometry of one chunk, split by draw state.
type Mesh struct {
	Pos         Pos
	Opaque      Buffers
	Translucent Buffers
	Billboard   Buffers
}

// Empty reports whether all three buckets are empty.
func (m *Mesh) Empty() bool {
	return m.Opaque.Empty() && m.Translucent.Empty() && m.Billboard.Empty()
}

// Quads returns the total quad count over all buckets.
func (m *Mesh) Quads() int {
	return m.Opaque.Quads() + m.Translucent.Quads() + m.Billboard.Quads()
}

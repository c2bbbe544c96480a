package chunk

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel/pkg/world/block"
)

// Shading constants.
const (
	OcclusionIntensity = float32(0.05)
	BlockSideDimming   = float32(0.1)
	DefaultDaylight    = float32(0.95)
)

type corner struct {
	pos mgl32.Vec3
	uv  mgl32.Vec2 // in tile widths
}

// Cube corners per face, relative to the block center.
var faceCorners = [6][4]corner{
	block.Top: {
		{mgl32.Vec3{-.5, .5, .5}, mgl32.Vec2{0, 0}},
		{mgl32.Vec3{.5, .5, .5}, mgl32.Vec2{1, 0}},
		{mgl32.Vec3{.5, .5, -.5}, mgl32.Vec2{1, 1}},
		{mgl32.Vec3{-.5, .5, -.5}, mgl32.Vec2{0, 1}},
	},
	block.Bottom: {
		{mgl32.Vec3{-.5, -.5, -.5}, mgl32.Vec2{0, 0}},
		{mgl32.Vec3{.5, -.5, -.5}, mgl32.Vec2{1, 0}},
		{mgl32.Vec3{.5, -.5, .5}, mgl32.Vec2{1, 1}},
		{mgl32.Vec3{-.5, -.5, .5}, mgl32.Vec2{0, 1}},
	},
	block.Front: {
		{mgl32.Vec3{-.5, .5, -.5}, mgl32.Vec2{0, 0}},
		{mgl32.Vec3{.5, .5, -.5}, mgl32.Vec2{1, 0}},
		{mgl32.Vec3{.5, -.5, -.5}, mgl32.Vec2{1, 1}},
		{mgl32.Vec3{-.5, -.5, -.5}, mgl32.Vec2{0, 1}},
	},
	block.Back: {
		{mgl32.Vec3{-.5, -.5, .5}, mgl32.Vec2{0, 1}},
		{mgl32.Vec3{.5, -.5, .5}, mgl32.Vec2{1, 1}},
		{mgl32.Vec3{.5, .5, .5}, mgl32.Vec2{1, 0}},
		{mgl32.Vec3{-.5, .5, .5}, mgl32.Vec2{0, 0}},
	},
	block.Left: {
		{mgl32.Vec3{-.5, -.5, -.5}, mgl32.Vec2{0, 1}},
		{mgl32.Vec3{-.5, -.5, .5}, mgl32.Vec2{1, 1}},
		{mgl32.Vec3{-.5, .5, .5}, mgl32.Vec2{1, 0}},
		{mgl32.Vec3{-.5, .5, -.5}, mgl32.Vec2{0, 0}},
	},
	block.Right: {
		{mgl32.Vec3{.5, .5, -.5}, mgl32.Vec2{0, 0}},
		{mgl32.Vec3{.5, .5, .5}, mgl32.Vec2{1, 0}},
		{mgl32.Vec3{.5, -.5, .5}, mgl32.Vec2{1, 1}},
		{mgl32.Vec3{.5, -.5, -.5}, mgl32.Vec2{0, 1}},
	},
}

// Crossed billboard quads: one in the XY plane, one in the ZY plane.
var billboardCorners = [2][4]corner{
	{
		{mgl32.Vec3{-.5, -.5, 0}, mgl32.Vec2{0, 1}},
		{mgl32.Vec3{.5, -.5, 0}, mgl32.Vec2{1, 1}},
		{mgl32.Vec3{.5, .5, 0}, mgl32.Vec2{1, 0}},
		{mgl32.Vec3{-.5, .5, 0}, mgl32.Vec2{0, 0}},
	},
	{
		{mgl32.Vec3{0, -.5, -.5}, mgl32.Vec2{0, 1}},
		{mgl32.Vec3{0, -.5, .5}, mgl32.Vec2{1, 1}},
		{mgl32.Vec3{0, .5, .5}, mgl32.Vec2{1, 0}},
		{mgl32.Vec3{0, .5, -.5}, mgl32.Vec2{0, 0}},
	},
}

// Mesher turns chunk blocks and light into render geometry.
type Mesher struct {
	Registry          block.Registry
	AlwaysTransparent block.ID
	Daylight          float32
}

// NewMesher returns a Mesher for reg. If reg reports an always-transparent
// id it is picked up automatically.
func NewMesher(reg block.Registry, daylight float32) *Mesher {
	m := &Mesher{Registry: reg, Daylight: daylight}
	if t, ok := reg.(interface{ AlwaysTransparent() block.ID }); ok {
		m.AlwaysTransparent = t.AlwaysTransparent()
	}
	return m
}

// FaceVisible reports whether a face of current is drawn against neighbor.
func (m *Mesher) FaceVisible(neighbor, current block.ID) bool {
	if neighbor == block.Air || neighbor == m.AlwaysTransparent {
		return true
	}
	return m.Registry.IsTranslucent(neighbor) && !m.Registry.IsTranslucent(current)
}

// Build rebuilds all geometry of c from scratch. w resolves cells beyond the
// chunk edge; with a nil w those read as air in full light.
func (m *Mesher) Build(c *Chunk, w Accessor) *Mesh {
	mesh := &Mesh{Pos: c.pos}
	v := view{c: c, w: w}
	ox, oy, oz := c.pos.Origin()

	for y := range SizeY {
		for z := range SizeZ {
			for x := range SizeX {
				id := c.blocks[index(x, y, z)]
				if m.Registry.IsInvisible(id) {
					continue
				}
				center := mgl32.Vec3{float32(ox + x), float32(oy + y), float32(oz + z)}

				if m.Registry.IsBillboard(id) {
					m.billboard(&mesh.Billboard, v, id, x, y, z, center)
					continue
				}

				buf := &mesh.Opaque
				if m.Registry.IsTranslucent(id) {
					buf = &mesh.Translucent
				}
				for _, f := range block.Faces {
					n := f.Normal()
					nx, ny, nz := x+n[0], y+n[1], z+n[2]
					if !m.FaceVisible(v.block(nx, ny, nz), id) {
						continue
					}
					m.face(buf, v, id, f, nx, ny, nz, center)
				}
			}
		}
	}
	return mesh
}

func (m *Mesher) face(buf *Buffers, v view, id block.ID, f block.Face, nx, ny, nz int, center mgl32.Vec3) {
	occ := m.occlusion(v, nx, ny, nz)
	if !f.Vertical() {
		occ -= BlockSideDimming
	}
	shade := max(float32(v.light(nx, ny, nz))*occ, float32(MinLight)) / float32(MaxLight)

	var pos [4]mgl32.Vec3
	var uv [4]mgl32.Vec2
	tex := m.Registry.TextureOffset(id, f)
	for i, c := range faceCorners[f] {
		pos[i] = center.Add(c.pos)
		uv[i] = tex.Add(c.uv.Mul(block.TileWidth))
	}
	buf.quad(pos, uv, m.tint(id, f, shade))
}

func (m *Mesher) billboard(buf *Buffers, v view, id block.ID, x, y, z int, center mgl32.Vec3) {
	shade := max(float32(v.light(x, y, z)), float32(MinLight)) / float32(MaxLight)
	for q, face := range [2]block.Face{block.Front, block.Back} {
		var pos [4]mgl32.Vec3
		var uv [4]mgl32.Vec2
		tex := m.Registry.TextureOffset(id, face)
		for i, c := range billboardCorners[q] {
			pos[i] = center.Add(c.pos)
			uv[i] = tex.Add(c.uv.Mul(block.TileWidth))
		}
		buf.quad(pos, uv, m.tint(id, face, shade))
	}
}

func (m *Mesher) tint(id block.ID, f block.Face, shade float32) mgl32.Vec4 {
	base := m.Registry.ColorOffset(id, f)
	k := shade * m.Daylight
	return mgl32.Vec4{base[0] * k, base[1] * k, base[2] * k, base[3]}
}

// occlusion darkens a face cell by the number of shadow casters among its
// eight horizontal neighbours.
func (m *Mesher) occlusion(v view, x, y, z int) float32 {
	count := 0
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			if m.Registry.CastsShadows(v.block(x+dx, y, z+dz)) {
				count++
			}
		}
	}
	return 1 - float32(count)*OcclusionIntensity
}

// view reads cells by local coordinates, falling through to the accessor
// outside the chunk.
type view struct {
	c *Chunk
	w Accessor
}

func (v view) block(x, y, z int) block.ID {
	if y < 0 || y >= SizeY {
		return block.Air
	}
	if InBounds(x, y, z) {
		return v.c.blocks[index(x, y, z)]
	}
	if v.w == nil {
		return block.Air
	}
	ox, _, oz := v.c.pos.Origin()
	return v.w.BlockAt(ox+x, y, oz+z)
}

func (v view) light(x, y, z int) uint8 {
	if y >= SizeY {
		return MaxLight
	}
	if y < 0 {
		return MinLight
	}
	if InBounds(x, y, z) {
		return v.c.light[index(x, y, z)]
	}
	if v.w == nil {
		return MaxLight
	}
	ox, _, oz := v.c.pos.Origin()
	return v.w.LightAt(ox+x, y, oz+z)
}

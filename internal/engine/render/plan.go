package render

import (
	"cmp"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// Bucket identifies one of the three geometry buckets of a chunk mesh.
type Bucket uint8

const (
	Opaque Bucket = iota
	Translucent
	Billboard
)

func (b Bucket) String() string {
	switch b {
	case Opaque:
		return "opaque"
	case Translucent:
		return "translucent"
	case Billboard:
		return "billboard"
	}
	return "unknown"
}

// State is the fixed-function state a pass is drawn with.
type State struct {
	DepthTest bool
	CullFace  bool
	Blend     bool
}

// StateFor returns the draw state of a bucket.
func StateFor(b Bucket) State {
	switch b {
	case Translucent:
		return State{DepthTest: true, CullFace: true, Blend: true}
	case Billboard:
		return State{DepthTest: true, CullFace: false, Blend: true}
	default:
		return State{DepthTest: true, CullFace: true}
	}
}

// Draw is one chunk's buffers within a pass.
type Draw struct {
	Pos     chunk.Pos
	Buffers *chunk.Buffers
}

// Pass is a set of draws sharing one bucket and draw state.
type Pass struct {
	Bucket Bucket
	State  State
	Draws  []Draw
}

// Quads returns the number of quads drawn by the pass.
func (p Pass) Quads() int {
	n := 0
	for _, d := range p.Draws {
		n += d.Buffers.Quads()
	}
	return n
}

// Plan orders meshes into the opaque, translucent and billboard passes, in
// that order. Opaque draws go front to back from eye, blended draws back to
// front. Empty buffers are left out; the three passes are always present.
func Plan(meshes []*chunk.Mesh, eye mgl32.Vec3) []Pass {
	sorted := slices.Clone(meshes)
	slices.SortFunc(sorted, func(a, b *chunk.Mesh) int {
		if c := cmp.Compare(distanceSq(a.Pos, eye), distanceSq(b.Pos, eye)); c != 0 {
			return c
		}
		if a.Pos.X != b.Pos.X {
			return cmp.Compare(a.Pos.X, b.Pos.X)
		}
		return cmp.Compare(a.Pos.Z, b.Pos.Z)
	})

	passes := []Pass{
		{Bucket: Opaque, State: StateFor(Opaque)},
		{Bucket: Translucent, State: StateFor(Translucent)},
		{Bucket: Billboard, State: StateFor(Billboard)},
	}
	for _, m := range sorted {
		for i, buf := range []*chunk.Buffers{&m.Opaque, &m.Translucent, &m.Billboard} {
			if !buf.Empty() {
				passes[i].Draws = append(passes[i].Draws, Draw{Pos: m.Pos, Buffers: buf})
			}
		}
	}
	slices.Reverse(passes[Translucent].Draws)
	slices.Reverse(passes[Billboard].Draws)
	return passes
}

func distanceSq(p chunk.Pos, eye mgl32.Vec3) float32 {
	x, _, z := p.Origin()
	d := mgl32.Vec2{float32(x) + chunk.SizeX/2 - eye.X(), float32(z) + chunk.SizeZ/2 - eye.Z()}
	return d.Dot(d)
}

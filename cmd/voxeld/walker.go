package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel/internal/engine"
	"github.com/go-theft-craft/voxel/pkg/world/block"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// walker is a scripted player: it walks along +X at a fixed speed, stays a
// couple of blocks above the ground and now and then builds a stone pillar
// ahead of itself.
type walker struct {
	speed      float32
	buildEvery int
	pos        mgl32.Vec3
	ticks      int
}

func newWalker(speed float32, buildEvery int) *walker {
	return &walker{speed: speed, buildEvery: buildEvery, pos: mgl32.Vec3{0.5, chunk.SizeY / 2, 0.5}}
}

func (w *walker) tick(e *engine.Engine) {
	w.ticks++
	w.pos[0] += w.speed

	x, z := int(math.Floor(float64(w.pos.X()))), int(math.Floor(float64(w.pos.Z())))
	if top, ok := surface(e, x, z); ok {
		w.pos[1] = float32(top) + 2
	}
	e.World().SetPlayerPosition(w.pos)

	if w.buildEvery > 0 && w.ticks%w.buildEvery == 0 {
		ahead := x + 8
		if top, ok := surface(e, ahead, z); ok {
			for y := top + 1; y <= top+3 && y < chunk.SizeY; y++ {
				e.Pipeline().SetBlock(ahead, y, z, block.Stone)
			}
		}
	}
}

// surface returns the highest non-penetrable block in the column.
func surface(e *engine.Engine, x, z int) (int, bool) {
	w, reg := e.World(), e.Blocks()
	for y := chunk.SizeY - 1; y >= 0; y-- {
		if !reg.IsPenetrable(w.GetBlock(x, y, z)) {
			return y, true
		}
	}
	return 0, false
}

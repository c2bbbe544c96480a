package chunk

import (
	"slices"

	"github.com/go-theft-craft/voxel/pkg/world/block"
)

var axes = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// LightResult summarizes one diffusion pass.
type LightResult struct {
	// Raised counts cells whose light increased, in this chunk or a neighbour.
	Raised int
	// Spilled lists neighbouring chunks that received light.
	Spilled []Pos
}

// CalcLight runs one diffusion pass. From every translucent cell with level L
// it walks outward along the six axes; step i proposes L-i and the walk ends
// at the first opaque cell, the first cell already at least that bright, or
// the world's vertical limits. Light only ever increases.
//
// Cells outside the chunk are reached through w. A nil w confines the pass
// to this chunk.
func (c *Chunk) CalcLight(reg block.Registry, w Accessor) LightResult {
	var res LightResult
	ox, _, oz := c.pos.Origin()

	for y := range SizeY {
		for z := range SizeZ {
			for x := range SizeX {
				i := index(x, y, z)
				if !reg.IsTranslucent(c.blocks[i]) {
					continue
				}
				level := c.light[i]
				if level <= MinLight+1 {
					continue
				}
				for _, d := range axes {
					c.spread(reg, w, &res, ox, oz, x, y, z, d, level)
				}
			}
		}
	}
	return res
}

func (c *Chunk) spread(reg block.Registry, w Accessor, res *LightResult, ox, oz, x, y, z int, d [3]int, level uint8) {
	for step := 1; step < int(level); step++ {
		nx, ny, nz := x+d[0]*step, y+d[1]*step, z+d[2]*step
		if ny < 0 || ny >= SizeY {
			return
		}
		candidate := level - uint8(step)

		if InBounds(nx, ny, nz) {
			j := index(nx, ny, nz)
			if !reg.IsTranslucent(c.blocks[j]) || c.light[j] >= candidate {
				return
			}
			c.light[j] = candidate
			res.Raised++
			continue
		}

		if w == nil {
			return
		}
		wx, wz := ox+nx, oz+nz
		if !reg.IsTranslucent(w.BlockAt(wx, ny, wz)) || w.LightAt(wx, ny, wz) >= candidate {
			return
		}
		if !w.PutLight(wx, ny, wz, candidate) {
			return
		}
		res.Raised++
		p, _, _, _, _ := Split(wx, ny, wz)
		if !slices.Contains(res.Spilled, p) {
			res.Spilled = append(res.Spilled, p)
		}
	}
}

// Relax repeats CalcLight until a pass raises nothing or passes is reached.
// It returns the total cells raised and every neighbour that received light.
func (c *Chunk) Relax(reg block.Registry, w Accessor, passes int) LightResult {
	var total LightResult
	for range max(passes, 1) {
		r := c.CalcLight(reg, w)
		total.Raised += r.Raised
		for _, p := range r.Spilled {
			if !slices.Contains(total.Spilled, p) {
				total.Spilled = append(total.Spilled, p)
			}
		}
		if r.Raised == 0 {
			break
		}
	}
	return total
}

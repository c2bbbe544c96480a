package chunk

import "github.com/go-theft-craft/voxel/pkg/world/block"

// CalcSunlight seeds every column with sunlight from the top of the chunk.
func (c *Chunk) CalcSunlight(reg block.Registry) {
	for x := range SizeX {
		for z := range SizeZ {
			c.CalcSunlightAt(reg, x, z)
		}
	}
}

// CalcSunlightAt walks column (x, z) downward from the top. Each translucent
// cell receives the current level, which drops by LightAbsorption after any
// non-air cell. The walk stops at the first opaque cell.
func (c *Chunk) CalcSunlightAt(reg block.Registry, x, z int) {
	if !InBounds(x, 0, z) {
		return
	}
	light := MaxLight
	for y := SizeY - 1; y >= 0; y-- {
		id := c.blocks[index(x, y, z)]
		if !reg.IsTranslucent(id) {
			return
		}
		c.light[index(x, y, z)] = light
		if id != block.Air && light > MinLight {
			light -= min(LightAbsorption, light-MinLight)
		}
	}
}

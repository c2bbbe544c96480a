package gen

import (
	"github.com/go-theft-craft/voxel/pkg/world/block"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// CavePass carves caves out of stone using two 3D noise fields.
type CavePass struct {
	noise1 *NoiseGenerator
	noise2 *NoiseGenerator
}

// NewCavePass creates a CavePass from a seed.
func NewCavePass(seed int64) *CavePass {
	return &CavePass{
		noise1: NewNoiseGenerator(seed + 300),
		noise2: NewNoiseGenerator(seed + 400),
	}
}

func (cp *CavePass) Name() string { return "caves" }

// Generate replaces stone with air where the combined density exceeds the
// threshold. Surface layers and the hardstone floor are never carved.
func (cp *CavePass) Generate(c *chunk.Chunk, _ chunk.Accessor) error {
	const threshold = 0.55

	ox, _, oz := c.Pos().Origin()
	for x := range chunk.SizeX {
		for z := range chunk.SizeZ {
			bx := float64(ox + x)
			bz := float64(oz + z)

			for y := 2; y < chunk.SizeY; y++ {
				if id, _ := c.Block(x, y, z); id != block.Stone {
					continue
				}
				by := float64(y)

				n1 := cp.noise1.Noise3D(bx/32.0, by/24.0, bz/32.0)
				n2 := cp.noise2.Noise3D(bx/48.0, by/32.0, bz/48.0)
				if (n1+n2)/2.0 > threshold {
					c.SetBlock(x, y, z, block.Air)
				}
			}
		}
	}
	return nil
}

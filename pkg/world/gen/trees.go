package gen

import (
	"github.com/go-theft-craft/voxel/pkg/world/block"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// Forest density thresholds.
const (
	grassDensity  = 0.25
	flowerDensity = 0.5
	treeDensity   = 0.6
	pineDensity   = 0.7

	treeMinY = 32
	// Trees are kept this far from the chunk edge so canopies stay inside it.
	treeMargin = 2
)

// PopulatePass decorates grass surfaces with high grass, flowers and trees
// according to a forest density field.
type PopulatePass struct {
	seed   int64
	forest *NoiseGenerator
}

// NewPopulatePass creates a PopulatePass from a seed.
func NewPopulatePass(seed int64) *PopulatePass {
	return &PopulatePass{seed: seed, forest: NewNoiseGenerator(seed + 600)}
}

func (pp *PopulatePass) Name() string { return "populate" }

// ForestDensity returns the forest density at a world block coordinate.
func (pp *PopulatePass) ForestDensity(bx, bz int) float64 {
	return pp.forest.OctaveNoise2D(float64(bx)/64.0, float64(bz)/64.0, 2, 0.5)
}

func (pp *PopulatePass) Generate(c *chunk.Chunk, _ chunk.Accessor) error {
	pos := c.Pos()
	ox, _, oz := pos.Origin()
	rng := newChunkRNG(pp.seed, pos.X, pos.Z, 600)

	for x := range chunk.SizeX {
		for z := range chunk.SizeZ {
			y := topY(c, x, z)
			if y <= WaterLevel || y+1 >= chunk.SizeY {
				continue
			}
			if id, _ := c.Block(x, y, z); id != block.Grass {
				continue
			}

			density := pp.ForestDensity(ox+x, oz+z)
			roll := rng.nextN(100)
			inner := x >= treeMargin && x < chunk.SizeX-treeMargin && z >= treeMargin && z < chunk.SizeZ-treeMargin

			switch {
			case density > pineDensity && roll < 3 && inner:
				placePine(c, x, y+1, z, rng)
			case density > treeDensity && roll < 4 && inner && y > treeMinY:
				placeOak(c, x, y+1, z, rng)
			case density > flowerDensity && roll < 6:
				flower := block.RedFlower
				if rng.nextN(2) == 0 {
					flower = block.YellowFlower
				}
				c.SetBlock(x, y+1, z, flower)
			case density > grassDensity && roll < 20:
				c.SetBlock(x, y+1, z, block.HighGrass)
			}
		}
	}
	return nil
}

// topY returns the y of the highest non-air block in a column, or -1.
func topY(c *chunk.Chunk, x, z int) int {
	for y := chunk.SizeY - 1; y >= 0; y-- {
		if id, _ := c.Block(x, y, z); id != block.Air {
			return y
		}
	}
	return -1
}

// placeOak places a trunk with a rounded leaf canopy.
func placeOak(c *chunk.Chunk, x, baseY, z int, rng *chunkRNG) {
	trunkHeight := 4 + rng.nextN(3) // 4-6
	if baseY+trunkHeight+2 >= chunk.SizeY {
		return
	}

	for y := baseY; y < baseY+trunkHeight; y++ {
		c.SetBlock(x, y, z, block.Wood)
	}

	leafBase := baseY + trunkHeight - 2
	for dy := range 4 {
		y := leafBase + dy
		radius := 2
		if dy >= 2 {
			radius = 1
		}
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				// Skip corners for round shape on wider layers.
				if radius == 2 && abs(dx) == 2 && abs(dz) == 2 && rng.nextN(2) == 0 {
					continue
				}
				setIfAir(c, x+dx, y, z+dz, block.Leaves)
			}
		}
	}
}

// placePine places a conical tree.
func placePine(c *chunk.Chunk, x, baseY, z int, rng *chunkRNG) {
	trunkHeight := 6 + rng.nextN(4) // 6-9
	if baseY+trunkHeight+1 >= chunk.SizeY {
		return
	}

	for y := baseY; y < baseY+trunkHeight; y++ {
		c.SetBlock(x, y, z, block.Wood)
	}

	// Widest at the bottom, narrowing to the top.
	for dy := 2; dy <= trunkHeight; dy++ {
		y := baseY + dy
		radius := min((trunkHeight-dy)/2, treeMargin)
		if radius <= 0 && dy < trunkHeight {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				setIfAir(c, x+dx, y, z+dz, block.Leaves)
			}
		}
	}
	setIfAir(c, x, baseY+trunkHeight, z, block.Leaves)
}

func setIfAir(c *chunk.Chunk, x, y, z int, id block.ID) {
	if cur, ok := c.Block(x, y, z); ok && cur == block.Air {
		c.SetBlock(x, y, z, id)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

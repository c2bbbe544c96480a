package gen

import (
	"github.com/go-theft-craft/voxel/pkg/world/block"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// OrePass places ore veins in stone using seeded per-chunk RNG.
type OrePass struct {
	seed int64
}

// NewOrePass creates an OrePass from a seed.
func NewOrePass(seed int64) *OrePass {
	return &OrePass{seed: seed}
}

type oreConfig struct {
	block    block.ID
	minY     int
	maxY     int
	veinSize int // max blocks per vein
	attempts int // veins per chunk
}

var ores = []oreConfig{
	{block.CoalOre, 1, 96, 10, 16},
	{block.IronOre, 1, 48, 6, 10},
}

func (op *OrePass) Name() string { return "ores" }

// Generate scatters ore veins within the chunk.
func (op *OrePass) Generate(c *chunk.Chunk, _ chunk.Accessor) error {
	pos := c.Pos()
	rng := newChunkRNG(op.seed, pos.X, pos.Z, 500)

	for _, ore := range ores {
		for range ore.attempts {
			x := rng.nextN(chunk.SizeX)
			y := ore.minY + rng.nextN(ore.maxY-ore.minY)
			z := rng.nextN(chunk.SizeZ)
			placeVein(c, x, y, z, ore.block, ore.veinSize, rng)
		}
	}
	return nil
}

func placeVein(c *chunk.Chunk, cx, cy, cz int, id block.ID, size int, rng *chunkRNG) {
	for range size {
		if cy >= 1 {
			if cur, ok := c.Block(cx, cy, cz); ok && cur == block.Stone {
				c.SetBlock(cx, cy, cz, id)
			}
		}

		// Random walk.
		switch rng.nextN(6) {
		case 0:
			cx++
		case 1:
			cx--
		case 2:
			cy++
		case 3:
			cy--
		case 4:
			cz++
		case 5:
			cz--
		}
	}
}

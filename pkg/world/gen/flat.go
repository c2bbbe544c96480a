package gen

import (
	"github.com/go-theft-craft/voxel/pkg/world/block"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// FlatHeight is the y of the grass layer produced by FlatPass.
const FlatHeight = 4

// FlatPass generates a superflat world:
// hardstone at y=0, stone y=1..2, dirt y=3, grass y=4.
type FlatPass struct{}

func (FlatPass) Name() string { return "flat" }

func (FlatPass) Generate(c *chunk.Chunk, _ chunk.Accessor) error {
	layers := [FlatHeight + 1]block.ID{block.Hardstone, block.Stone, block.Stone, block.Dirt, block.Grass}
	for x := range chunk.SizeX {
		for z := range chunk.SizeZ {
			for y, id := range layers {
				c.SetBlock(x, y, z, id)
			}
		}
	}
	return nil
}

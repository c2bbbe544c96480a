package gen

import (
	"github.com/go-theft-craft/voxel/pkg/world/block"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// Terrain levels.
const (
	WaterLevel = 30
	BeachMin   = 28
	BeachMax   = 34

	surfaceDepth = 4
	maxHeight    = chunk.SizeY - 24
)

// NewDefault returns the standard chain: terrain, caves, ores, populate.
func NewDefault(seed int64) *Chain {
	return NewChain(
		NewTerrainPass(seed),
		NewCavePass(seed),
		NewOrePass(seed),
		NewPopulatePass(seed),
	)
}

// TerrainPass fills columns from a noise heightmap: hardstone floor, stone,
// a surface layer and water up to WaterLevel.
type TerrainPass struct {
	elevation *NoiseGenerator
	roughness *NoiseGenerator
	detail    *NoiseGenerator
}

// NewTerrainPass creates a TerrainPass from a seed.
func NewTerrainPass(seed int64) *TerrainPass {
	return &TerrainPass{
		elevation: NewNoiseGenerator(seed),
		roughness: NewNoiseGenerator(seed + 1),
		detail:    NewNoiseGenerator(seed + 2),
	}
}

func (p *TerrainPass) Name() string { return "terrain" }

// HeightAt returns the surface height at a world block coordinate.
func (p *TerrainPass) HeightAt(bx, bz int) int {
	e := p.elevation.OctaveNoise2D(float64(bx)/256.0, float64(bz)/256.0, 4, 0.5)
	r := p.roughness.Noise2D(float64(bx)/128.0, float64(bz)/128.0)
	d := p.detail.OctaveNoise2D(float64(bx)/32.0, float64(bz)/32.0, 3, 0.5)

	h := int(40 + e*28 + r*d*16)
	return min(max(h, 1), maxHeight)
}

func (p *TerrainPass) Generate(c *chunk.Chunk, _ chunk.Accessor) error {
	ox, _, oz := c.Pos().Origin()
	for x := range chunk.SizeX {
		for z := range chunk.SizeZ {
			p.fillColumn(c, x, z, p.HeightAt(ox+x, oz+z))
		}
	}
	return nil
}

func (p *TerrainPass) fillColumn(c *chunk.Chunk, x, z, height int) {
	top, filler := surfaceFor(height)

	c.SetBlock(x, 0, z, block.Hardstone)
	for y := 1; y <= height; y++ {
		switch {
		case y == height:
			c.SetBlock(x, y, z, top)
		case y > height-surfaceDepth:
			c.SetBlock(x, y, z, filler)
		default:
			c.SetBlock(x, y, z, block.Stone)
		}
	}
	for y := height + 1; y <= WaterLevel; y++ {
		c.SetBlock(x, y, z, block.Water)
	}
}

// surfaceFor picks the top and filler blocks for a column height.
func surfaceFor(height int) (top, filler block.ID) {
	switch {
	case height >= BeachMin && height <= BeachMax:
		return block.Sand, block.Sand
	case height < BeachMin:
		return block.Dirt, block.Dirt
	default:
		return block.Grass, block.Dirt
	}
}
